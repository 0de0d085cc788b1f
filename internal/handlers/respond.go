package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/middleware"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxFormSize bounds a multipart body: two images plus the text fields.
const maxFormSize = 2*storage.MaxImageSize + 1<<20

const maxJSONSize = 1 << 20

type successResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
	Token  string `json:"token,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
	User    any    `json:"user,omitempty"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successResponse{Status: "success", Data: data})
}

// writeError answers with the error envelope. Internal causes are logged and
// never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindInternal:
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
	case apperr.KindExternalStorage:
		log.Warn("asset store failure", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, apperr.HTTPStatus(kind), errorResponse{Status: "error", Message: apperr.PublicMessage(err)})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Validation("Invalid multipart form")
	}
	return nil
}

// formImage returns the uploaded file in field, or nil when none was sent.
func formImage(r *http.Request, field string) (*storage.File, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("Invalid file in " + field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		return nil, apperr.Validation("Failed to read " + field)
	}
	return &storage.File{
		Data:        data,
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
	}, nil
}

func pathID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid id")
	}
	return id, nil
}

// caller returns the user RequireAuth attached to the request.
func caller(r *http.Request) *models.User {
	return middleware.UserFrom(r.Context())
}
