package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	mw "everink.io/ember/common/middleware"
)

// set up routes
func (s *letterServer) SetupMux() {
	r := httprouter.New()
	chain := func(h httprouter.Handle) httprouter.Handle {
		return mw.Chain(h, mw.AccessLogger(), mw.PanicRecoverer())
	}
	r.POST("/api/letter", chain(s.HandleTaskCreateLetter()))
	r.GET("/api/letter", chain(s.HandleTaskGetLetter()))
	// short-link landing: resolve server-side and bounce to the page form
	r.GET("/l/:id", chain(s.HandleTaskOpenShortLink()))
	// static front-end assets
	r.Handler(
		http.MethodGet,
		"/static/*filepath",
		http.StripPrefix("/static/", http.FileServer(http.Dir("static"))),
	)
	r.GET("/", chain(s.HandleTaskGetApp()))

	s.Router = r
}
