package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"runtime"
	"strings"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/carbocation/brainatlas/ontology"
	"github.com/gorilla/mux"
	"gopkg.in/guregu/null.v3"
)

type handler struct {
	*Global

	router *mux.Router
}

// projection is a connectivity.Summary that survives JSON encoding: a mean
// over no rows is null rather than NaN.
type projection struct {
	ID      int        `json:"id"`
	Acronym string     `json:"acronym"`
	Name    string     `json:"name"`
	Left    null.Float `json:"left"`
	Right   null.Float `json:"right"`
	Both    null.Float `json:"both"`
	NLeft   int        `json:"n_left"`
	NRight  int        `json:"n_right"`
	NBoth   int        `json:"n_both"`
}

func newProjection(s connectivity.Summary) projection {
	return projection{
		ID:      s.ID,
		Acronym: s.Acronym,
		Name:    s.Name,
		Left:    nanToNull(s.Left),
		Right:   nanToNull(s.Right),
		Both:    nanToNull(s.Both),
		NLeft:   s.NLeft,
		NRight:  s.NRight,
		NBoth:   s.NBoth,
	}
}

func nanToNull(v float64) null.Float {
	return null.NewFloat(v, !math.IsNaN(v) && !math.IsInf(v, 0))
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, output interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output); err != nil {
		h.log.Println(r.URL.Path, err)
	}
}

func (h *handler) url(name string) string {
	u, err := h.router.Get(name).URL()
	if err != nil {
		return ""
	}

	return u.String()
}

func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, struct {
		Site        string
		Structures  string
		Efferents   string
		Afferents   string
		Experiments string
		Metrics     []brainatlas.Metric
	}{
		Site:        h.Global.Site,
		Structures:  h.url("structures"),
		Efferents:   "/efferents/{acronym}",
		Afferents:   "/afferents/{acronym}",
		Experiments: "/experiments/{acronym}",
		Metrics:     brainatlas.Metrics,
	})
}

func (h *handler) Goroutines(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "There are %d goroutines running\n", runtime.NumGoroutine())
}

func (h *handler) NotFound(w http.ResponseWriter, r *http.Request) {
	JSONError(h, w, r, fmt.Errorf("%s was not found", r.URL.Path), http.StatusNotFound)
}

// Structures lists the summary structures, or with ?set=main the structures
// of most interest.
func (h *handler) Structures(w http.ResponseWriter, r *http.Request) {
	structures := h.Global.atlas.Tree.SummaryStructures()

	switch set := r.URL.Query().Get("set"); set {
	case "", "summary":
	case "main":
		var err error
		if structures, err = h.Global.atlas.Tree.ByAcronyms(ontology.MainStructures); err != nil {
			JSONError(h, w, r, err)
			return
		}
	default:
		JSONError(h, w, r, fmt.Errorf("Set %q is not recognized. Valid sets are summary and main", set), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, r, ontology.SortByAcronym(structures))
}

func (h *handler) Structure(w http.ResponseWriter, r *http.Request) {
	acronym := mux.Vars(r)["acronym"]
	s, ok := h.Global.atlas.Tree.ByAcronym(acronym)
	if !ok {
		JSONError(h, w, r, fmt.Errorf("Structure acronym %q is not in the ontology", acronym), http.StatusNotFound)
		return
	}

	h.writeJSON(w, r, struct {
		ontology.Structure
		Ancestors   []ontology.Structure `json:"ancestors"`
		Descendants []ontology.Structure `json:"descendants"`
	}{
		Structure:   s,
		Ancestors:   h.Global.atlas.Tree.Ancestors(s.ID),
		Descendants: h.Global.atlas.Tree.Descendants(s.ID),
	})
}

func (h *handler) Experiments(w http.ResponseWriter, r *http.Request) {
	acronym := mux.Vars(r)["acronym"]
	s, ok := h.Global.atlas.Tree.ByAcronym(acronym)
	if !ok {
		JSONError(h, w, r, fmt.Errorf("Structure acronym %q is not in the ontology", acronym), http.StatusNotFound)
		return
	}

	out := make([]brainatlas.Experiment, 0)
	for _, e := range h.Global.atlas.Experiments {
		if e.StructureID == s.ID {
			out = append(out, e)
		}
	}

	h.writeJSON(w, r, out)
}

// Projections runs an efferent or afferent analysis. The metric can be chosen
// with ?metric=.
func (h *handler) Projections(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	direction, err := connectivity.ParseDirection(strings.TrimSuffix(vars["direction"], "s"))
	if err != nil {
		JSONError(h, w, r, err, http.StatusBadRequest)
		return
	}

	metric, err := brainatlas.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		JSONError(h, w, r, err, http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("metric") == "" {
		metric = h.Global.atlas.Analyzer.Metric
	}

	acronym := vars["acronym"]
	if _, ok := h.Global.atlas.Tree.ByAcronym(acronym); !ok {
		JSONError(h, w, r, fmt.Errorf("Structure acronym %q is not in the ontology", acronym), http.StatusNotFound)
		return
	}

	summaries, err := h.Global.atlas.Analyzer.Analyze(r.Context(), direction, acronym, metric)
	if err != nil {
		JSONError(h, w, r, err)
		return
	}

	out := make([]projection, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, newProjection(s))
	}

	h.writeJSON(w, r, struct {
		SOI         string       `json:"soi"`
		Direction   string       `json:"direction"`
		Metric      string       `json:"metric"`
		Projections []projection `json:"projections"`
	}{
		SOI:         acronym,
		Direction:   string(direction),
		Metric:      string(metric),
		Projections: out,
	})
}
