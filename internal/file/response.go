package file

import "strings"

// uploadTimeLayout matches the millisecond ISO-8601 form browsers produce.
const uploadTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FileDetails describes the stored file in an upload response.
type FileDetails struct {
	FileName     string `json:"fileName"     example:"lq3k2x-a1b2c3d4e5f60718.png"`
	OriginalName string `json:"originalName" example:"holiday.png"`
	Size         int64  `json:"size"         example:"52341"`
	Extension    string `json:"extension"    example:".png"`
	UploadTime   string `json:"uploadTime"   example:"2026-10-16T09:30:00.000Z"`
}

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	FileDetails FileDetails `json:"fileDetails"`
	FileURL     string      `json:"fileUrl"     example:"http://localhost:8080/file/lq3k2x-a1b2c3d4e5f60718.png"`
	DownloadURL string      `json:"downloadUrl" example:"http://localhost:8080/download/lq3k2x-a1b2c3d4e5f60718.png"`
	DeleteURL   string      `json:"deleteUrl"   example:"http://localhost:8080/delete/lq3k2x-a1b2c3d4e5f60718.png"`
	Message     string      `json:"message"     example:"File uploaded successfully"`
}

// NewUploadResponse builds the response for f, addressing it under baseURL
// (scheme and host, e.g. "http://files.example.com").
func NewUploadResponse(f *StoredFile, baseURL string) UploadResponse {
	baseURL = strings.TrimRight(baseURL, "/")
	return UploadResponse{
		FileDetails: FileDetails{
			FileName:     f.ID,
			OriginalName: f.OriginalName,
			Size:         f.SizeBytes,
			Extension:    f.Extension,
			UploadTime:   f.CreatedAt.UTC().Format(uploadTimeLayout),
		},
		FileURL:     baseURL + "/file/" + f.ID,
		DownloadURL: baseURL + "/download/" + f.ID,
		DeleteURL:   baseURL + "/delete/" + f.ID,
		Message:     "File uploaded successfully",
	}
}
