package export

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/semo00000/champ-electrostatique/internal/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var sampleHeader = []string{"distance", "x", "y", "potential", "ex", "ey", "magnitude"}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{ff(r.Distance), ff(r.X), ff(r.Y), ff(r.Potential), ff(r.Ex), ff(r.Ey), ff(r.Magnitude)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(sampleHeader)
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	rows := make([]Row, 0, len(recs)-1)
	for n, rec := range recs[1:] {
		var v [7]float64
		for i, s := range rec {
			if v[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", n+2, sampleHeader[i], err)
			}
		}
		rows = append(rows, Row{v[0], v[1], v[2], v[3], v[4], v[5], v[6]})
	}
	return rows, nil
}

// WriteChargesCSV writes the charge table.
func WriteChargesCSV(w io.Writer, charges []core.Charge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "x", "y", "q_uc", "locked", "field", "net_force"}); err != nil {
		return err
	}
	for _, c := range ChargeTable(charges) {
		rec := []string{c.ID, ff(c.X), ff(c.Y), ff(c.Q), strconv.FormatBool(c.Locked), ff(c.Field), ff(c.NetForce)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadChargesCSV reads the charge columns of a charge table.
func ReadChargesCSV(r io.Reader) ([]core.Charge, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []core.Charge
	for n, rec := range recs {
		if n == 0 {
			continue
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: want 5 columns, got %d", n+1, len(rec))
		}
		var c core.Charge
		c.ID = rec[0]
		if c.X, err = strconv.ParseFloat(rec[1], 64); err == nil {
			if c.Y, err = strconv.ParseFloat(rec[2], 64); err == nil {
				if c.Q, err = strconv.ParseFloat(rec[3], 64); err == nil {
					c.Locked, err = strconv.ParseBool(rec[4])
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Document is the JSON export of a sampling run.
type Document struct {
	Generated time.Time   `json:"generated"`
	Kind      string      `json:"kind"`
	Charges   []ChargeRow `json:"charges"`
	Summary   Summary     `json:"summary"`
	Samples   []Row       `json:"samples,omitempty"`
	Grid      *Grid       `json:"grid,omitempty"`
}

func NewLineDocument(charges []core.Charge, rows []Row) Document {
	return Document{
		Generated: time.Now().UTC(),
		Kind:      "line",
		Charges:   ChargeTable(charges),
		Summary:   Summarize(rows),
		Samples:   rows,
	}
}

func NewGridDocument(charges []core.Charge, g *Grid) Document {
	return Document{
		Generated: time.Now().UTC(),
		Kind:      "grid",
		Charges:   ChargeTable(charges),
		Summary:   Summarize(g.Rows),
		Grid:      g,
	}
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	err := json.NewDecoder(r).Decode(&doc)
	return doc, err
}

// WritePNG encodes a rendered frame.
func WritePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}
