package atlasapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{BaseURL: srv.URL, HTTP: srv.Client(), PageSize: 2}
}

func TestStructuresPages(t *testing.T) {
	var requests []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		criteria := r.URL.Query().Get("criteria")
		requests = append(requests, criteria)

		switch {
		case strings.Contains(criteria, "[start_row$eq0]"):
			fmt.Fprint(w, `{"success": true, "start_row": 0, "num_rows": 2, "total_rows": 3, "msg": [
				{"id": 997, "acronym": "root", "name": "root", "graph_order": 0, "structure_id_path": "/997/", "structure_sets": []},
				{"id": 795, "acronym": "PAG", "name": "Periaqueductal gray", "parent_structure_id": 997, "graph_order": 1, "structure_id_path": "/997/795/",
				 "structure_sets": [{"id": 167587189}, {"id": 12}]}
			]}`)
		case strings.Contains(criteria, "[start_row$eq2]"):
			fmt.Fprint(w, `{"success": true, "start_row": 2, "num_rows": 1, "total_rows": 3, "msg": [
				{"id": 294, "acronym": "SCm", "name": "Superior colliculus, motor related", "parent_structure_id": 997, "graph_order": 2, "structure_sets": null}
			]}`)
		default:
			t.Errorf("Unexpected criteria %s", criteria)
		}
	})

	structures, err := c.Structures(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(requests) != 2 {
		t.Errorf("Expected 2 pages to be requested, saw %d", len(requests))
	}
	if !strings.HasPrefix(requests[0], "model::Structure,rma::criteria,[graph_id$eq1]") {
		t.Errorf("Unexpected criteria %s", requests[0])
	}
	if len(structures) != 3 {
		t.Fatalf("Expected 3 structures, got %d", len(structures))
	}
	if pag := structures[1]; pag.Acronym != "PAG" || pag.StructureSetIDs != "167587189;12" || pag.ParentStructureID != 997 {
		t.Errorf("Unexpected PAG record %+v", pag)
	}
}

func TestQueryFailures(t *testing.T) {
	for _, v := range []struct {
		Name   string
		Status int
		Body   string
	}{
		{"unsuccessful", 200, `{"success": false, "msg": "Data Access error in query"}`},
		{"bare string", 200, `"Something bad happened"`},
		{"not a list", 200, `{"success": true, "msg": {"oops": 1}}`},
		{"empty", 200, ``},
		{"server error", 500, `boom`},
	} {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(v.Status)
			fmt.Fprint(w, v.Body)
		})

		_, err := c.SpatialSearch(context.Background(), SpatialQuery{SeedPoint: &[3]int{8600, 4000, 5600}})
		var qe *QueryError
		if !errors.As(err, &qe) {
			t.Errorf("%s: expected a QueryError, got %v", v.Name, err)
		}
	}
}

func TestExperimentsCreFilter(t *testing.T) {
	var criteria string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		criteria = r.URL.Query().Get("criteria")
		fmt.Fprint(w, `{"success": true, "msg": [
			{"id": 1, "structure-id": 795, "structure-abbrev": "PAG", "injection-coordinates": [1, 2, 3], "transgenic-line": null, "strain": "C57BL/6J"},
			{"id": 2, "structure-id": 795, "structure-abbrev": "PAG", "injection-coordinates": [4, 5, 6], "transgenic-line": "Vglut2-IRES-Cre"}
		]}`)
	})

	cre := true
	experiments, err := c.Experiments(context.Background(), ExperimentQuery{Cre: &cre, InjectionStructureIDs: []int{795}})
	if err != nil {
		t.Fatal(err)
	}
	if len(experiments) != 1 || experiments[0].ID != 2 || experiments[0].InjectionZ != 6 {
		t.Errorf("Unexpected experiments %+v", experiments)
	}
	if !strings.Contains(criteria, "[injection_structures$eq795]") || strings.Contains(criteria, "transgenic_lines") {
		t.Errorf("Unexpected criteria %s", criteria)
	}

	cre = false
	experiments, err = c.Experiments(context.Background(), ExperimentQuery{Cre: &cre})
	if err != nil {
		t.Fatal(err)
	}
	if len(experiments) != 1 || experiments[0].ID != 1 || experiments[0].Strain != "C57BL/6J" {
		t.Errorf("Unexpected experiments %+v", experiments)
	}
	if !strings.Contains(criteria, "[transgenic_lines$eq0]") {
		t.Errorf("Unexpected criteria %s", criteria)
	}
}

func TestStructureUnionizesBatches(t *testing.T) {
	var batches int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		batches++
		fmt.Fprint(w, `{"success": true, "total_rows": 1, "msg": [
			{"id": 10, "section_data_set_id": 1, "structure_id": 795, "hemisphere_id": 2, "is_injection": false, "volume": 1.5, "projection_energy": 0.25, "projection_density": null}
		]}`)
	})

	ids := make([]int64, unionizeBatchSize+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	unionizes, err := c.StructureUnionizes(context.Background(), UnionizeQuery{ExperimentIDs: ids, StructureIDs: []int{795}})
	if err != nil {
		t.Fatal(err)
	}

	if batches != 2 {
		t.Errorf("Expected 2 batches, got %d", batches)
	}
	if len(unionizes) != 2 {
		t.Fatalf("Expected 2 unionizes, got %d", len(unionizes))
	}
	u := unionizes[0]
	if u.ExperimentID != 1 || u.HemisphereID != 2 || u.ProjectionEnergy.Float64 != 0.25 || u.ProjectionDensity.Valid {
		t.Errorf("Unexpected unionize %+v", u)
	}
}

func TestStructureUnionizesWithoutExperiments(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request should be made")
	})

	unionizes, err := c.StructureUnionizes(context.Background(), UnionizeQuery{})
	if err != nil || len(unionizes) != 0 {
		t.Errorf("Expected no unionizes and no error, got %v, %v", unionizes, err)
	}
}

func TestTreeSearch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tree_search/Structure/795.json" || r.URL.Query().Get("ancestors") != "true" {
			t.Errorf("Unexpected request %s", r.URL)
		}
		fmt.Fprint(w, `{"success": true, "msg": [{"id": 997, "acronym": "root"}, {"id": 795, "acronym": "PAG"}]}`)
	})

	structures, err := c.TreeSearch(context.Background(), 795, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(structures) != 2 || structures[0].Acronym != "root" {
		t.Errorf("Unexpected structures %+v", structures)
	}
}
