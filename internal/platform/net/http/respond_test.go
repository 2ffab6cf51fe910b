package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "feedbackhub/internal/platform/errors"
	pnet "feedbackhub/internal/platform/net"
	phttp "feedbackhub/internal/platform/net/http"
)

// helper to build a request with a request_id in context
func reqWithReqID(method, path, rid string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), rid, ""))
	return req
}

func TestJSONHelper(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.JSON(rec, http.StatusTeapot, map[string]any{"k": "v"})
	if rec.Code != http.StatusTeapot {
		t.Fatalf("JSON status: expected 418, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
}

func TestHandleSuccessEnvelope(t *testing.T) {
	h := phttp.Handle(func(r *http.Request) phttp.Response {
		return phttp.OK(map[string]string{"a": "b"})
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, reqWithReqID("GET", "/x", "rid-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("code: %d", rec.Code)
	}
	var env phttp.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.StatusCode != 200 || env.RequestID != "rid-1" || env.Data == nil {
		t.Fatalf("bad envelope: %+v", env)
	}
}

func TestHandleCreatedAndNoContent(t *testing.T) {
	recC := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.Created(map[string]int{"id": 7})
	}).ServeHTTP(recC, reqWithReqID("POST", "/x", "rid-2"))
	if recC.Code != http.StatusCreated {
		t.Fatalf("Created code: %d", recC.Code)
	}

	recN := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response {
		return phttp.NoContent()
	}).ServeHTTP(recN, reqWithReqID("DELETE", "/x", "rid-3"))
	if recN.Code != http.StatusNoContent {
		t.Fatalf("NoContent code: %d", recN.Code)
	}
}

func TestHandleErrorMapsStatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{perr.NotFoundf("project p1 not found"), http.StatusNotFound},
		{perr.InvalidArgf("endDate must be later than startDate"), http.StatusBadRequest},
		{perr.New(perr.ErrorCodeConflict, "duplicate"), http.StatusConflict},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		phttp.Handle(func(*http.Request) phttp.Response {
			return phttp.Error(c.err)
		}).ServeHTTP(rec, reqWithReqID("GET", "/x", "rid-4"))

		if rec.Code != c.status {
			t.Fatalf("err %v: expected status %d, got %d", c.err, c.status, rec.Code)
		}
		var env phttp.Envelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		if env.Error == "" || env.Code == 0 {
			t.Fatalf("err %v: expected populated error envelope, got %+v", c.err, env)
		}
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.RespondError(rec, reqWithReqID("GET", "/x", "rid-5"), perr.NotFoundf("nope"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code: %d", rec.Code)
	}
	var env phttp.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.RequestID != "rid-5" || env.Error != "nope" {
		t.Fatalf("bad envelope: %+v", env)
	}
}
