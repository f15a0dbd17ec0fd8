package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTextClient_ClassifyText(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		wantLabel    string
		wantErr      bool
	}{
		{
			name:         "success",
			status:       http.StatusOK,
			responseBody: `{"label":"joy"}`,
			wantLabel:    "joy",
		},
		{
			name:         "server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"boom"}`,
			wantErr:      true,
		},
		{
			name:         "model error in body",
			status:       http.StatusOK,
			responseBody: `{"error":"model not loaded"}`,
			wantErr:      true,
		},
		{
			name:         "empty label",
			status:       http.StatusOK,
			responseBody: `{"label":"  "}`,
			wantErr:      true,
		},
		{
			name:         "malformed json",
			status:       http.StatusOK,
			responseBody: `{"label":`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got textRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/predict/text" || r.Method != http.MethodPost {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			c := NewTextClient(srv.URL+"/", 0)
			label, err := c.ClassifyText(context.Background(), "I am so happy today")

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Errorf("expected ErrUnavailable, got %v", err)
				}
				return
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			if got.Text != "I am so happy today" {
				t.Errorf("request text = %q", got.Text)
			}
		})
	}
}

func TestTextClient_Unconfigured(t *testing.T) {
	c := NewTextClient("", 0)
	if _, err := c.ClassifyText(context.Background(), "hi"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if c.Ready(context.Background()) {
		t.Error("unconfigured client should not be ready")
	}
}

func TestTextClient_Ready(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{name: "loaded", status: http.StatusOK, body: `{"model_loaded":true}`, want: true},
		{name: "not loaded", status: http.StatusOK, body: `{"model_loaded":false}`, want: false},
		{name: "down", status: http.StatusServiceUnavailable, body: ``, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if got := NewTextClient(srv.URL, 0).Ready(context.Background()); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFaceClient_ClassifyFace(t *testing.T) {
	frame := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	tests := []struct {
		name         string
		responseBody string
		wantLabel    string
		wantErr      bool
	}{
		{
			name:         "dominant emotion of first face",
			responseBody: `{"faces":[{"emotions":{"angry":0.01,"neutral":0.80,"happy":0.19}},{"emotions":{"happy":0.99}}]}`,
			wantLabel:    "neutral",
		},
		{
			name:         "no faces",
			responseBody: `{"faces":[]}`,
			wantErr:      true,
		},
		{
			name:         "face without scores",
			responseBody: `{"faces":[{"emotions":{}}]}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody []byte
			var gotType string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/predict/face" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				gotType = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			label, err := NewFaceClient(srv.URL, 0).ClassifyFace(context.Background(), frame)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if gotType != "image/jpeg" {
				t.Errorf("Content-Type = %q, want image/jpeg", gotType)
			}
			if !bytes.Equal(gotBody, frame) {
				t.Errorf("request body not forwarded")
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Errorf("expected ErrUnavailable, got %v", err)
				}
				return
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
		})
	}
}

func TestDominantEmotion(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]float64
		want   string
		wantOK bool
	}{
		{name: "empty", scores: nil, want: "", wantOK: false},
		{name: "single", scores: map[string]float64{"sad": 0.2}, want: "sad", wantOK: true},
		{name: "max wins", scores: map[string]float64{"sad": 0.2, "fear": 0.7, "happy": 0.1}, want: "fear", wantOK: true},
		{name: "tie goes to smallest label", scores: map[string]float64{"surprise": 0.5, "angry": 0.5, "sad": 0.1}, want: "angry", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DominantEmotion(tt.scores)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DominantEmotion() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
