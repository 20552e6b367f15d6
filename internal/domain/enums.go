package domain

// FileType represents the document formats accepted for ingestion.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeCSV:  "text/csv",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"xlsx": FileTypeXLSX,
	"csv":  FileTypeCSV,
}

// ChangeAction describes what the reconciler did with an extracted row.
type ChangeAction string

const (
	ChangeInserted  ChangeAction = "inserted"
	ChangeUpdated   ChangeAction = "updated"
	ChangeMerged    ChangeAction = "merged"
	ChangeUnchanged ChangeAction = "unchanged"
)

// ResolutionMethod records which path of the resolver produced a result.
type ResolutionMethod string

const (
	MethodPolicy     ResolutionMethod = "policy"
	MethodTermBoost  ResolutionMethod = "term_boost"
	MethodFuzzy      ResolutionMethod = "fuzzy"
	MethodSuggestion ResolutionMethod = "suggestion"
)

// UserRole is the role carried in admin access tokens.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// SeedSourcePrefix marks source documents that came from the seed directory.
const SeedSourcePrefix = "seed_"
