package model

import (
	"path"
	"strings"
	"time"
)

// Logical blob buckets
const (
	BucketCV         = "cv"
	BucketMaterials  = "materials"
	BucketTalkSlides = "talk-slides"
)

// Material is a file attached to a teaching or project card
type Material struct {
	ID           string    `json:"id"`
	CardKey      string    `json:"card_key"`
	FilePath     string    `json:"file_path"`
	FileName     string    `json:"file_name"`
	DisplayLabel string    `json:"display_label"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// TalkSlide is the slide deck of a talk. There is at most one per talk key.
type TalkSlide struct {
	TalkKey    string    `json:"talk_key"`
	FilePath   string    `json:"file_path"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// BlobObject is a stored file
type BlobObject struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// DisplayLabel returns the file name without its last extension
func DisplayLabel(fileName string) string {
	ext := path.Ext(fileName)
	if ext == fileName {
		return fileName
	}
	return strings.TrimSuffix(fileName, ext)
}

// CleanFileName strips any directory part a client sent along with the name
func CleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return path.Base(strings.TrimSpace(name))
}
