package http

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/utils/errutil"
	"github.com/secmon-lab/casewright/pkg/utils/safe"
)

const (
	formDocuments = "documents"
	formHTML      = "html"
	formHTMLFile  = "html_file"
)

type testCasesRequest struct {
	Intent string `json:"intent"`
}

type scriptsRequest struct {
	TestCase model.Candidate `json:"test_case"`
}

// statusCodeOf maps a result to its HTTP status
func statusCodeOf(status types.Status, kind types.ErrorKind) int {
	if status == types.StatusSuccess {
		return http.StatusOK
	}
	switch kind {
	case types.ErrorKindInvalidInput, types.ErrorKindValidationRejected:
		return http.StatusBadRequest
	case types.ErrorKindNotInitialized:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	safe.Write(r.Context(), w, data)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	safe.Write(r.Context(), w, []byte("ok"))
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.session.Status())
}

func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to parse multipart form"), "bad ingest request")
		writeJSON(w, r, http.StatusBadRequest, &model.IngestResult{
			Status:    types.StatusError,
			Message:   "Request must be multipart/form-data with one or more documents.",
			ErrorKind: types.ErrorKindInvalidInput,
		})
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to remove multipart temp files"), "cleanup failed")
		}
	}()

	docs := make([]model.Document, 0, len(r.MultipartForm.File[formDocuments]))
	for _, fh := range r.MultipartForm.File[formDocuments] {
		content, err := readFormFile(ctx, fh)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to read uploaded document")
			writeJSON(w, r, http.StatusBadRequest, &model.IngestResult{
				Status:    types.StatusError,
				Message:   "Failed to read uploaded document " + fh.Filename + ".",
				ErrorKind: types.ErrorKindInvalidInput,
			})
			return
		}
		docs = append(docs, model.Document{Name: fh.Filename, Content: content})
	}

	html := r.FormValue(formHTML)
	if files := r.MultipartForm.File[formHTMLFile]; len(files) > 0 {
		content, err := readFormFile(ctx, files[0])
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to read uploaded HTML")
			writeJSON(w, r, http.StatusBadRequest, &model.IngestResult{
				Status:    types.StatusError,
				Message:   "Failed to read uploaded HTML file.",
				ErrorKind: types.ErrorKindInvalidInput,
			})
			return
		}
		html = model.Document{Name: files[0].Filename, Content: content}.Text()
	}

	result := s.session.Ingest(ctx, docs, html)
	writeJSON(w, r, statusCodeOf(result.Status, result.ErrorKind), result)
}

func readFormFile(ctx context.Context, fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open form file", goerr.V(model.DocumentKey, fh.Filename))
	}
	defer safe.Close(ctx, f)

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read form file", goerr.V(model.DocumentKey, fh.Filename))
	}
	return content, nil
}

func (s *Server) testCasesHandler(w http.ResponseWriter, r *http.Request) {
	var req testCasesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = errutil.Handle(r.Context(), goerr.Wrap(err, "failed to decode request"), "bad test case request")
		writeJSON(w, r, http.StatusBadRequest, &model.TestCaseResult{
			Status:    types.StatusError,
			Message:   "Request body must be a JSON object with an intent.",
			ErrorKind: types.ErrorKindInvalidInput,
			TestCases: []model.TestCase{},
		})
		return
	}

	result := s.session.GenerateTestCases(r.Context(), req.Intent)
	writeJSON(w, r, statusCodeOf(result.Status, result.ErrorKind), result)
}

func (s *Server) scriptsHandler(w http.ResponseWriter, r *http.Request) {
	var req scriptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = errutil.Handle(r.Context(), goerr.Wrap(err, "failed to decode request"), "bad script request")
		writeJSON(w, r, http.StatusBadRequest, &model.ScriptResult{
			Status:    types.StatusError,
			Message:   "Request body must be a JSON object with a test_case.",
			ErrorKind: types.ErrorKindInvalidInput,
		})
		return
	}

	result := s.session.GenerateScriptFromCandidate(r.Context(), req.TestCase)
	writeJSON(w, r, statusCodeOf(result.Status, result.ErrorKind), result)
}
