package models

import "time"

// SessionStatus is the lifecycle state of a batch run
type SessionStatus string

const (
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionError      SessionStatus = "error"
)

// Session represents one submitted parent folder and its records
type Session struct {
	ID              string        `json:"id"`
	Status          SessionStatus `json:"status"`
	ParentFolderID  string        `json:"parentFolderId,omitempty"`
	DefaultCategory string        `json:"defaultCategory,omitempty"`
	Records         []*Record     `json:"records"`
	Categories      []Category    `json:"categories"`
	ShippingOptions []string      `json:"shippingOptions"`
	Error           string        `json:"error,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Record is one physical vinyl item being turned into a listing
type Record struct {
	ID          string          `json:"id"`
	FolderID    string          `json:"folderId"`
	FolderName  string          `json:"folderName"`
	CustomLabel string          `json:"customLabel"`
	Status      RecordStatus    `json:"status"`
	Images      []ImageRef      `json:"images,omitempty"`
	AIData      *AnalysisResult `json:"aiData,omitempty"`
	Error       string          `json:"error,omitempty"`
	UserInput   *UserInput      `json:"userInput,omitempty"`
}

// ImageRef points at one photo of a record.
// URL is the hosted URL once processing attached it.
type ImageRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Category is a marketplace category code/name pair
type Category struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Folder is a FileStore folder entry
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedTime time.Time `json:"createdTime,omitempty"`
}

// FileEntry is a FileStore file entry
type FileEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
}

// AnalysisResult is the structured identification returned by the analyzer
type AnalysisResult struct {
	Title         string     `json:"Title"`
	Subtitle      string     `json:"Subtitle,omitempty"`
	Artist        string     `json:"Artist"`
	Genre         string     `json:"Genre,omitempty"`
	Style         string     `json:"Style,omitempty"`
	RecordLabel   string     `json:"RecordLabel,omitempty"`
	CatalogNumber string     `json:"CatalogNumber,omitempty"`
	Format        string     `json:"Format,omitempty"`
	Country       string     `json:"Country,omitempty"`
	Released      FlexString `json:"Released,omitempty"`
	Tracklist     Tracklist  `json:"Tracklist,omitempty"`
	Notes         string     `json:"Notes,omitempty"`
	DiscogsURL    string     `json:"DiscogsUrl,omitempty"`
	MPN           string     `json:"MPN,omitempty"`
	Material      string     `json:"Material,omitempty"`
	MarketPrice   string     `json:"MarketPrice,omitempty"`
}
