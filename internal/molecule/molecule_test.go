package molecule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterSDF = `962
  -OEChem-03012400003D

  3  2  0     0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
    0.2774    0.8929    0.2544 H   0  0  0  0  0  0  0  0  0  0  0  0
    0.6068   -0.2383   -0.7169 H   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0  0  0  0
  1  3  1  0  0  0  0
M  END
$$$$
`

// pubchem serves a tiny subset of PUG REST. The 3-D record is missing when
// only2d is set.
func pubchem(t *testing.T, only2d bool) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/compound/name/water/cids/JSON", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"IdentifierList":{"CID":[962]}}`)
	})
	mux.HandleFunc("/compound/name/unobtainium/cids/JSON", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Fault":{"Code":"PUGREST.NotFound"}}`, http.StatusNotFound)
	})
	mux.HandleFunc("/compound/cid/962/property/MolecularFormula,MolecularWeight,IUPACName/JSON", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"PropertyTable":{"Properties":[{"CID":962,"MolecularFormula":"H2O","MolecularWeight":"18.015","IUPACName":"oxidane"}]}}`)
	})
	mux.HandleFunc("/compound/cid/962/record/SDF", func(w http.ResponseWriter, r *http.Request) {
		if only2d && r.URL.Query().Get("record_type") == "3d" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, waterSDF)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	c := NewClient(pubchem(t, false).URL)
	comp, err := c.Lookup(context.Background(), " water ")
	require.NoError(t, err)
	assert.Equal(t, 962, comp.CID)
	assert.Equal(t, "oxidane", comp.Name)
	assert.Equal(t, "H2O", comp.Formula)
	assert.InDelta(t, 18.015, comp.Weight, 1e-9)
	assert.True(t, comp.ThreeD)
	assert.Equal(t, []string{"H", "O"}, comp.Elements)
	assert.Equal(t, []LegendEntry{{"H", "#FFFFFF"}, {"O", "#FF0D0D"}}, comp.Legend())
}

func TestLookupFallsBackTo2D(t *testing.T) {
	comp, err := NewClient(pubchem(t, true).URL).Lookup(context.Background(), "water")
	require.NoError(t, err)
	assert.False(t, comp.ThreeD)
	assert.NotEmpty(t, comp.SDF)
}

func TestLookupErrors(t *testing.T) {
	c := NewClient(pubchem(t, false).URL)
	_, err := c.Lookup(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrNoName))
	_, err = c.Lookup(context.Background(), "unobtainium")
	assert.True(t, errors.Is(err, ErrNotFound))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	_, err = NewClient(down.URL).Lookup(context.Background(), "water")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestElements(t *testing.T) {
	assert.Equal(t, []string{"H", "O"}, Elements(waterSDF))
	assert.Nil(t, Elements("too\nshort"))
	assert.Equal(t, DefaultColor, Color("Og"))
}
