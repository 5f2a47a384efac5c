package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/lfarias/meubolso/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Statement upload
// ============================================================

// uploadStatementHandler accepts a multipart upload with a single "file"
// part containing an OFX statement and runs it through the import pipeline.
func uploadStatementHandler(ingestSvc *service.IngestService, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/statements/upload")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing form field 'file'")
			return
		}
		defer file.Close()

		if !strings.EqualFold(filepath.Ext(header.Filename), ".ofx") {
			writeError(w, http.StatusBadRequest, "only .ofx files are accepted")
			return
		}
		span.SetAttributes(attribute.String("upload.filename", header.Filename))

		raw, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read uploaded file")
			return
		}

		report, err := ingestSvc.IngestFile(ctx, header.Filename, raw)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, report)
	}
}
