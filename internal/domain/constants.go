package domain

import "regexp"

// DatasetCategories is the fixed category enum shared by request
// validation and the storage layer. Keep both in sync with the schema.
var DatasetCategories = []string{
	"Healthcare",
	"Finance",
	"E-commerce",
	"Technology",
	"Education",
	"Marketing",
	"Social Media",
	"IoT",
	"Transportation",
	"Entertainment",
	"Sports",
	"Government",
	"Other",
}

// FileTypeByExtension maps upload extensions to the stored file type.
// Anything outside the map is rejected at upload time.
var FileTypeByExtension = map[string]string{
	".csv":  "csv",
	".json": "json",
	".xlsx": "xlsx",
	".pdf":  "pdf",
	".zip":  "zip",
	".sql":  "sql",
	".xml":  "xml",
}

// AllowedMIMETypes accepted for dataset uploads alongside the extension check.
var AllowedMIMETypes = map[string]bool{
	"text/csv":         true,
	"application/json": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/pdf":          true,
	"application/zip":          true,
	"application/sql":          true,
	"application/xml":          true,
	"text/xml":                 true,
	"application/octet-stream": true,
}

const (
	MaxUploadSize = 100 << 20 // 100MB
	UploadField   = "datasetFile"

	MinPrice = 0.0
	MaxPrice = 1000.0

	MaxTags      = 10
	MaxTagLength = 30
)

var (
	WalletAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	TxHashRe        = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
	UsernameRe      = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	EmailRe         = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
)

func IsValidCategory(category string) bool {
	for _, c := range DatasetCategories {
		if c == category {
			return true
		}
	}
	return false
}
