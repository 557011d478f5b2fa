package main

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/viper"

	"everink.io/ember/common/logging"
	cst "everink.io/ember/constants"
	le "everink.io/ember/errors"
)

const errMsgLetterNotFound = "Letter not found"

// HandleTaskCreateLetter stores an encoded letter and returns its short id.
func (s *letterServer) HandleTaskCreateLetter() httprouter.Handle {
	clog := logging.WithFuncName().WithField("httpMethod", http.MethodPost)
	maxReqBodySize := viper.GetInt64(cst.EnvReqBodySizeMaxByte)
	if maxReqBodySize <= 0 {
		// tokens carrying 3 photos run to a few hundred KB
		maxReqBodySize = 1 << 20
	}
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		r.Body = http.MaxBytesReader(w, r.Body, maxReqBodySize)
		var req struct {
			Data string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			clog.WithError(err).Error("error decoding create request body")
			writeErr(w, le.ErrBadInput("Missing letter data").WithCause(err))
			return
		}
		if req.Data == "" {
			writeErr(w, le.ErrBadInput("Missing letter data"))
			return
		}
		id, serr := s.LS.Create(req.Data)
		if serr != nil {
			clog.WithError(serr).Error("error saving letter")
			writeErr(w, serr)
			return
		}
		// freshly created letters are the likeliest to be opened soon
		if err := s.readCache.Set(id, req.Data); err != nil {
			clog.WithError(err).WithField("letterID", id).Warn("error priming read cache")
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

// HandleTaskGetLetter returns the stored payload for an id.
func (s *letterServer) HandleTaskGetLetter() httprouter.Handle {
	clog := logging.WithFuncName().WithField("httpMethod", http.MethodGet)
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		id := r.URL.Query().Get("id")
		if id == "" {
			writeErr(w, le.ErrBadInput("Missing letter ID"))
			return
		}
		data, serr := s.lookupLetter(id)
		if serr != nil {
			if serr.Code != le.ErrCodeNotFound {
				clog.WithError(serr).WithField("letterID", id).Error("error retrieving letter")
			}
			writeErr(w, serr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"data": data})
	}
}

// HandleTaskOpenShortLink is the recipient's landing route: it resolves the
// id server-side and bounces to the page URL form the session machine reads.
// Recipients of dead links land on the not-found screen, never a raw error.
func (s *letterServer) HandleTaskOpenShortLink() httprouter.Handle {
	clog := logging.WithFuncName()
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ps.ByName("id")
		data, serr := s.lookupLetter(id)
		if serr != nil {
			if serr.Code != le.ErrCodeNotFound {
				clog.WithError(serr).WithField("letterID", id).Error("error resolving short link")
			}
			http.Redirect(w, r, "/?"+cst.ParamError+"=not_found", http.StatusFound)
			return
		}
		q := url.Values{}
		q.Set(cst.ParamLetter, data)
		http.Redirect(w, r, "/?"+q.Encode(), http.StatusFound)
	}
}

// HandleTaskGetApp serves the front-end shell.
func (s *letterServer) HandleTaskGetApp() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		http.ServeFile(w, r, "static/index.html")
	}
}

// lookupLetter consults the read cache before the store.
func (s *letterServer) lookupLetter(id string) (string, *le.LetterErr) {
	if cached, err := s.readCache.Get(id); err == nil {
		if data, ok := cached.(string); ok {
			return data, nil
		}
	}
	data, serr := s.LS.Get(id)
	if serr != nil {
		if serr.Code == le.ErrCodeNotFound {
			return "", le.ErrNotFound(errMsgLetterNotFound)
		}
		return "", serr
	}
	if err := s.readCache.Set(id, data); err != nil {
		logging.WithFuncName().WithError(err).WithField("letterID", id).Warn("error filling read cache")
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WithFuncName().WithError(err).Error("error encoding response body")
	}
}

// writeErr maps a LetterErr onto the wire. Misconfigured stores carry the
// isVercel marker the front-end's share screen keys its banner on.
func writeErr(w http.ResponseWriter, err *le.LetterErr) {
	body := map[string]interface{}{"error": err.Error()}
	if err.Code == le.ErrCodeMisconfigured {
		body["isVercel"] = true
	}
	writeJSON(w, err.StatusCode(), body)
}
