package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vmihailenco/msgpack/v5"
)

// Document is the file form of a scene.
type Document struct {
	Nodes []NodeRecord `json:"nodes" validate:"dive"`
	Edges []EdgeRecord `json:"edges" validate:"dive"`
}

type NodeRecord struct {
	ID     string          `json:"id" validate:"required"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Width  float64         `json:"width" validate:"gt=0"`
	Height float64         `json:"height" validate:"gt=0"`
	Text   string          `json:"text,omitempty"`
	Hidden bool            `json:"hidden,omitempty"`
	Style  json.RawMessage `json:"style,omitempty"`
	Alarm  *Alarm          `json:"alarm,omitempty"`
}

type EdgeRecord struct {
	ID        string          `json:"id,omitempty"`
	Endpoints []string        `json:"endpoints" validate:"len=2,dive,required"`
	Shape     ShapeName       `json:"shape,omitempty" validate:"omitempty,oneof=straight curve"`
	Arrows    *[2]bool        `json:"arrows,omitempty"`
	Hidden    bool            `json:"hidden,omitempty"`
	Style     json.RawMessage `json:"style,omitempty"`
	Animate   *AnimateRecord  `json:"animate,omitempty"`
}

// AnimateRecord starts an edge animating on load. An empty record animates
// with the edge's style.
type AnimateRecord struct {
	Speed *Speed `json:"speed,omitempty"`
	Color *RGB   `json:"color,omitempty"`
	Type  string `json:"type,omitempty"`
}

func (r AnimateRecord) config() AnimateConfig {
	cfg := AnimateConfig{Color: r.Color, Type: AnimateType(r.Type)}
	if r.Speed != nil {
		cfg.Speed = *r.Speed
	}
	return cfg
}

var validate = validator.New()

// AddByJSON parses a scene document and adds its nodes and edges. Every
// element is created before any edge is connected, so edges may anchor on
// edges listed after them. Records that cannot be placed (duplicate ids,
// unknown endpoints, rejected connections) are logged and skipped.
func (s *Scene) AddByJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return s.AddDocument(doc)
}

// AddDocument validates doc and adds its contents; see AddByJSON.
func (s *Scene) AddDocument(doc Document) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	log := Logger()

	for _, rec := range doc.Nodes {
		n := NewNode(rec.ID, rec.X, rec.Y, rec.Width, rec.Height, rec.Text)
		if len(rec.Style) > 0 {
			if err := json.Unmarshal(rec.Style, &n.Style); err != nil {
				log.Warn("skipping node style", "node", rec.ID, "err", err)
			}
		}
		n.SetVisible(!rec.Hidden)
		if rec.Alarm != nil {
			a := *rec.Alarm
			n.alarm = &a
		}
		if err := s.Add(n); err != nil {
			log.Warn("skipping node", "node", rec.ID, "err", err)
		}
	}

	type pending struct {
		edge *Edge
		rec  EdgeRecord
	}
	var edges []pending
	for _, rec := range doc.Edges {
		e := NewEdge(WithID(rec.ID), WithShape(ShapeByName(rec.Shape)))
		if len(rec.Style) > 0 {
			if err := json.Unmarshal(rec.Style, &e.style); err != nil {
				log.Warn("skipping edge style", "edge", rec.ID, "err", err)
			}
		}
		if rec.Arrows != nil {
			e.showStartArrow, e.showEndArrow = rec.Arrows[0], rec.Arrows[1]
		}
		e.SetVisible(!rec.Hidden)
		if err := s.Add(e); err != nil {
			log.Warn("skipping edge", "edge", rec.ID, "err", err)
			continue
		}
		edges = append(edges, pending{e, rec})
	}

	for _, p := range edges {
		from, okFrom := s.Element(p.rec.Endpoints[0])
		to, okTo := s.Element(p.rec.Endpoints[1])
		if !okFrom || !okTo {
			log.Warn("skipping edge with unknown endpoint", "edge", p.edge.ID(), "endpoints", p.rec.Endpoints)
			s.Remove(p.edge)
			continue
		}
		if !p.edge.Connect(from, to).Attached() {
			log.Warn("skipping edge that cannot connect", "edge", p.edge.ID(), "endpoints", p.rec.Endpoints)
			s.Remove(p.edge)
			continue
		}
		if p.rec.Animate != nil {
			p.edge.Animate(p.rec.Animate.config())
		}
	}
	return nil
}

// Document captures the scene in file form. Detached edges are left out.
func (s *Scene) Document() (Document, error) {
	doc := Document{Nodes: []NodeRecord{}, Edges: []EdgeRecord{}}
	for _, el := range s.elements {
		switch v := el.(type) {
		case *Node:
			style, err := json.Marshal(v.Style)
			if err != nil {
				return Document{}, fmt.Errorf("node %q style: %w", v.ID(), err)
			}
			doc.Nodes = append(doc.Nodes, NodeRecord{
				ID:     v.ID(),
				X:      v.X,
				Y:      v.Y,
				Width:  v.Width,
				Height: v.Height,
				Text:   v.GetText(),
				Hidden: !v.Viewable(),
				Style:  style,
				Alarm:  v.alarm,
			})
		case *Edge:
			snap, err := v.Serialize()
			if err != nil {
				continue
			}
			style, err := json.Marshal(v.style)
			if err != nil {
				return Document{}, fmt.Errorf("edge %q style: %w", v.ID(), err)
			}
			rec := EdgeRecord{
				ID:        v.ID(),
				Endpoints: snap.Endpoints,
				Shape:     shapeName(v.shape),
				Arrows:    &[2]bool{v.showStartArrow, v.showEndArrow},
				Hidden:    !v.Viewable(),
				Style:     style,
			}
			if snap.Animate != nil {
				rec.Animate = &AnimateRecord{}
			}
			doc.Edges = append(doc.Edges, rec)
		}
	}
	return doc, nil
}

func (s *Scene) MarshalJSON() ([]byte, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Format is an on-disk encoding of a scene document.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFromPath picks msgpack for .msgpack/.mp files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// Encode writes the scene document to w.
func (s *Scene) Encode(w io.Writer, f Format) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if f != FormatMsgpack {
		_, err = w.Write(append(data, '\n'))
		return err
	}
	// msgpack files hold the same tree as the JSON form
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Decode reads a scene document from r and adds it to the scene.
func (s *Scene) Decode(r io.Reader, f Format) error {
	if f != FormatMsgpack {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			return fmt.Errorf("decode scene: %w", err)
		}
		return s.AddByJSON(buf.Bytes())
	}
	var tree any
	if err := msgpack.NewDecoder(r).Decode(&tree); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return s.AddByJSON(data)
}
