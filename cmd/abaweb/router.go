package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
)

func router(config *Global) http.Handler {
	router := mux.NewRouter()
	GET := router.Methods("GET", "HEAD").Subrouter()

	h := handler{Global: config, router: router}

	GET.HandleFunc("/", h.Index).Name("index")
	GET.HandleFunc("/goroutines", h.Goroutines)
	GET.HandleFunc("/structures", h.Structures).Name("structures")
	GET.HandleFunc("/structures/{acronym}", h.Structure).Name("structure")
	GET.HandleFunc("/experiments/{acronym}", h.Experiments).Name("experiments")
	GET.HandleFunc("/{direction:(?:efferents|afferents)}/{acronym}", h.Projections).Name("projections")

	router.NotFoundHandler = http.HandlerFunc(h.NotFound)

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router)
}
