package feed

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	driveService  *DriveService
	ingestService *IngestService
	folderPath    string
	s3Prefix      string
}

func NewHandler(driveService *DriveService, ingestService *IngestService, folderPath, s3Prefix string) *Handler {
	return &Handler{
		driveService:  driveService,
		ingestService: ingestService,
		folderPath:    folderPath,
		s3Prefix:      s3Prefix,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/feed/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/feed/ingest", h.IngestFile).Methods("POST")
	router.HandleFunc("/api/feed/sync", h.Sync).Methods("POST")
}

// ListFiles lists feed files in the configured Drive folder.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if h.driveService == nil {
		http.Error(w, "drive feed source is not configured", http.StatusServiceUnavailable)
		return
	}

	folderPath := r.URL.Query().Get("path")
	if folderPath == "" {
		folderPath = h.folderPath
	}

	folderID, err := h.driveService.FindFolderByPath(folderPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	files, err := h.driveService.ListFiles(folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

// IngestFile ingests a single Drive feed file by id.
func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	result, err := h.ingestService.IngestDriveFile(r.Context(), fileID)
	if err != nil {
		http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Sync sweeps the object-store prefix and ingests every CSV snapshot.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = h.s3Prefix
	}

	results, err := h.ingestService.SyncObjectStore(r.Context(), prefix)
	if err != nil {
		http.Error(w, fmt.Sprintf("sync failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"ingested": results})
}
