// Package media serves and accepts listing photos over HTTP, backed by
// GridFS. It runs as its own binary so the API server has no MongoDB
// dependency.
package media

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"uslugo/internal/common"
	"uslugo/internal/dbmongo"
)

const maxPhotoBytes = 10 << 20 // 10 MiB

type HTTPServer struct {
	storage *dbmongo.PhotoStorage
}

func NewHTTPServer(mongoClient *dbmongo.MongoClient) *HTTPServer {
	return &HTTPServer{storage: dbmongo.NewPhotoStorage(mongoClient)}
}

func (s *HTTPServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(common.LoggingMiddleware)

	router.HandleFunc("/media/{fileId}", s.serveFile).Methods("GET")
	router.Handle("/media", common.AuthMiddleware(http.HandlerFunc(s.uploadFile))).Methods("POST")
	router.HandleFunc("/health", s.health).Methods("GET")
	return router
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router().ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	fileReader, photo, err := s.storage.Download(r.Context(), fileID)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", photo.ContentType.String())
	w.Header().Set("Content-Length", fmt.Sprintf("%d", photo.Size))

	if _, err := io.Copy(w, fileReader); err != nil {
		log.Printf("error streaming file: %v", err)
	}
}

// uploadFile accepts one multipart photo under the "photo" field and
// returns its GridFS id, which post creation embeds as image_id.
func (s *HTTPServer) uploadFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserIDFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "photo too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "missing photo field")
		return
	}
	defer file.Close()

	photo, err := s.storage.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), userID, file)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.RespondJSON(w, http.StatusCreated, photo)
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
