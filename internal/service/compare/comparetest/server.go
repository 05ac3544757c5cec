// Package comparetest provides an in-process stand-in for the comparison service.
package comparetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"roomcompare/internal/service/compare"
)

// Upload is what the fake service received for one request.
type Upload struct {
	Image1     []byte
	Image2     []byte
	Filename1  string
	Filename2  string
	ParseError error
}

// Server is a fake comparison backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	response compare.Response
	status   int
	block    chan struct{}
	uploads  []Upload
	calls    atomic.Int32
}

// NewServer starts a backend that answers every request with resp.
func NewServer(resp compare.Response) *Server {
	s := &Server{response: resp, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetStatus makes the backend fail with the given status code.
func (s *Server) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Block holds every request until Release is called or the client goes away.
func (s *Server) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block = make(chan struct{})
}

// Release unblocks requests held by Block.
func (s *Server) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.block != nil {
		close(s.block)
		s.block = nil
	}
}

// Calls returns how many requests reached the backend.
func (s *Server) Calls() int {
	return int(s.calls.Load())
}

// Uploads returns a copy of the received uploads.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)

	if r.Method != http.MethodPost || r.URL.Path != "/compare" {
		http.NotFound(w, r)
		return
	}

	upload := Upload{}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		upload.ParseError = err
	} else {
		upload.Image1, upload.Filename1 = readPart(r, "image1")
		upload.Image2, upload.Filename2 = readPart(r, "image2")
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, upload)
	status := s.status
	resp := s.response
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}

	if status != http.StatusOK {
		http.Error(w, "comparison failed", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func readPart(r *http.Request, field string) ([]byte, string) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, ""
	}
	defer file.Close()
	data, _ := io.ReadAll(file)
	return data, header.Filename
}

// FullResponse returns a response with one item in every category.
func FullResponse() compare.Response {
	return compare.Response{
		Removed: &compare.Group{
			Images: []string{"cmVtb3ZlZA=="},
			Labels: []string{"backpack"},
			Boxes:  [][]float64{{10, 20, 110, 220}},
		},
		Appeared: &compare.Group{
			Images: []string{"YXBwZWFyZWQ=", "c2Vjb25k"},
			Labels: []string{"sock", "cup"},
			Boxes:  [][]float64{{0, 0, 50, 50}, {200, 100, 260, 180}},
		},
		Changed: &compare.Group{
			Images: []string{"Y2hhbmdlZA=="},
			Labels: []string{"pillow"},
			Boxes:  [][]float64{{30, 40, 90, 100}},
		},
	}
}
