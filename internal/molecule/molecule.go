// Package molecule looks up compounds by name in PubChem and prepares their
// 3-D structure for the in-browser viewer.
package molecule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'molecule'
func tracer() tracing.Trace {
	return tracing.Select("molecule")
}

// DefaultBaseURL is the PubChem PUG REST root.
const DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

var (
	ErrNoName      = errors.New("please enter a chemical name")
	ErrNotFound    = errors.New("chemical not found in database")
	ErrUnavailable = errors.New("PubChem servers appear to be unavailable, please try again later")
)

// Compound is what the viewer page shows.
type Compound struct {
	CID      int
	Name     string // IUPAC name, or the query when PubChem has none
	Formula  string
	Weight   float64 // g/mol
	SDF      string
	ThreeD   bool // SDF carries 3-D coordinates
	Elements []string
}

// Client queries PUG REST.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient uses DefaultBaseURL when base is empty.
func NewClient(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(base, "/"), HTTP: &http.Client{Timeout: 20 * time.Second}}
}

// Lookup resolves name and fetches properties and structure of the first
// matching compound. The 3-D conformer is preferred, the 2-D record is the
// fallback.
func (c *Client) Lookup(ctx context.Context, name string) (*Compound, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoName
	}
	cid, err := c.cid(ctx, name)
	if err != nil {
		return nil, err
	}
	comp, err := c.properties(ctx, cid)
	if err != nil {
		return nil, err
	}
	if comp.Name == "" {
		r, size := utf8.DecodeRuneInString(name)
		comp.Name = string(unicode.ToUpper(r)) + name[size:]
	}
	for _, rt := range []string{"3d", "2d"} {
		sdf, err := c.get(ctx, fmt.Sprintf("/compound/cid/%d/record/SDF?record_type=%s", cid, rt))
		if errors.Is(err, ErrNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		comp.SDF, comp.ThreeD = string(sdf), rt == "3d"
		break
	}
	if comp.SDF == "" {
		return nil, fmt.Errorf("no structure record for CID %d", cid)
	}
	comp.Elements = Elements(comp.SDF)
	tracer().Infof("%q: CID %d %s (3d=%v)", name, cid, comp.Formula, comp.ThreeD)
	return comp, nil
}

func (c *Client) cid(ctx context.Context, name string) (int, error) {
	data, err := c.get(ctx, "/compound/name/"+url.PathEscape(name)+"/cids/JSON")
	if err != nil {
		return 0, err
	}
	var doc struct {
		IdentifierList struct {
			CID []int `json:"CID"`
		} `json:"IdentifierList"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("reading PubChem identifiers: %w", err)
	}
	if len(doc.IdentifierList.CID) == 0 || doc.IdentifierList.CID[0] == 0 {
		return 0, ErrNotFound
	}
	return doc.IdentifierList.CID[0], nil
}

func (c *Client) properties(ctx context.Context, cid int) (*Compound, error) {
	data, err := c.get(ctx, fmt.Sprintf("/compound/cid/%d/property/MolecularFormula,MolecularWeight,IUPACName/JSON", cid))
	if err != nil {
		return nil, err
	}
	var doc struct {
		PropertyTable struct {
			Properties []struct {
				CID              int         `json:"CID"`
				MolecularFormula string      `json:"MolecularFormula"`
				MolecularWeight  json.Number `json:"MolecularWeight"`
				IUPACName        string      `json:"IUPACName"`
			} `json:"Properties"`
		} `json:"PropertyTable"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reading PubChem properties: %w", err)
	}
	if len(doc.PropertyTable.Properties) == 0 {
		return nil, ErrNotFound
	}
	p := doc.PropertyTable.Properties[0]
	comp := &Compound{CID: cid, Name: p.IUPACName, Formula: p.MolecularFormula}
	if p.MolecularWeight != "" {
		comp.Weight, _ = strconv.ParseFloat(string(p.MolecularWeight), 64)
	}
	return comp, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		tracer().Errorf("PubChem request %s: %v", path, err)
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, ErrUnavailable
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("PubChem request failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Elements lists the distinct element symbols of the atom block of an SDF
// record, sorted.
func Elements(sdf string) []string {
	lines := strings.Split(strings.ReplaceAll(sdf, "\r\n", "\n"), "\n")
	if len(lines) < 4 || len(lines[3]) < 3 {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[3][:3]))
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	for i := 4; i < 4+n && i < len(lines); i++ {
		if f := strings.Fields(lines[i]); len(f) >= 4 {
			seen[f[3]] = true
		}
	}
	elements := make([]string, 0, len(seen))
	for e := range seen {
		elements = append(elements, e)
	}
	sort.Strings(elements)
	return elements
}
