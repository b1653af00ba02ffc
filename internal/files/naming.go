package files

import "strings"

// DocumentExt is the extension of rendered case documents.
const DocumentExt = ".pdf"

// YearDirPrefix prefixes per-year output folders.
const YearDirPrefix = "Year_"

// UnknownYear names the folder for cases without a year.
const UnknownYear = "Unknown"

var pathSeparators = strings.NewReplacer("/", "_", `\`, "_")

// SafeFilename returns "{id}_{name}.pdf" with spaces in the name replaced by
// underscores and path separators in either part replaced by underscores.
// Distinct records may map to the same name.
func SafeFilename(id, name string) string {
	base := id + "_" + strings.ReplaceAll(name, " ", "_") + DocumentExt
	return pathSeparators.Replace(base)
}

// YearFolder returns the per-year folder name for year.
func YearFolder(year string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		year = UnknownYear
	}
	return YearDirPrefix + pathSeparators.Replace(year)
}
