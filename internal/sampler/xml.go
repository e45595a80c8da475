package sampler

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// XMLSampler re-serializes the root element of a well-formed XML document.
// Comments, processing instructions and directives are dropped. When the
// serialization exceeds MaxSampleChars the tree is pruned to a document-order
// prefix that still serializes to well-formed XML within the limit.
type XMLSampler struct {
	maxChars int
}

func NewXMLSampler() *XMLSampler {
	return &XMLSampler{maxChars: MaxSampleChars}
}

func (s *XMLSampler) Format() models.FormatTag {
	return models.FormatXML
}

func (s *XMLSampler) Sample(raw []byte) (models.ContentSample, error) {
	if err := checkWellFormed(raw); err != nil {
		return "", malformed(err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return "", malformed(err)
	}
	root := doc.Root()
	if root == nil {
		return "", malformed(errors.New("no root element"))
	}

	tree := elementsOnly(root)
	out, err := serialize(tree)
	if err != nil {
		return "", malformed(err)
	}
	if utf8.RuneCountInString(out) <= s.maxChars {
		return models.ContentSample(out), nil
	}

	pruned := fitElement(tree, s.maxChars)
	if pruned == nil {
		// The root tag name alone exceeds the limit: return the empty root.
		pruned = etree.NewElement(tree.FullTag())
	}
	out, err = serialize(pruned)
	if err != nil {
		return "", malformed(err)
	}
	return models.ContentSample(out), nil
}

// checkWellFormed runs a strict token pass over raw: tags must balance and
// exactly one root element may appear, with nothing but whitespace, comments,
// processing instructions and directives around it.
func checkWellFormed(raw []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = true

	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					line, _ := dec.InputPos()
					return fmt.Errorf("line %d: junk after document element", line)
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				line, _ := dec.InputPos()
				return fmt.Errorf("line %d: text outside the document element", line)
			}
		}
	}
	if roots == 0 {
		return errors.New("no element found")
	}
	return nil
}

// elementsOnly copies el keeping only elements, attributes and text.
func elementsOnly(el *etree.Element) *etree.Element {
	out := etree.NewElement(el.FullTag())
	for _, a := range el.Attr {
		out.CreateAttr(a.FullKey(), a.Value)
	}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			out.AddChild(elementsOnly(t))
		case *etree.CharData:
			out.CreateText(t.Data)
		}
	}
	return out
}

func serialize(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToString()
}

func serializedLen(el *etree.Element) int {
	s, err := serialize(el)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return utf8.RuneCountInString(s)
}

// fitElement returns a copy of el holding the longest document-order prefix
// of its attributes and content that serializes within limit characters, or
// nil if not even the empty element fits. Serialized lengths are additive, so
// each child is measured once and only the child that overflows is pruned.
func fitElement(el *etree.Element, limit int) *etree.Element {
	out := etree.NewElement(el.FullTag())
	if serializedLen(out) > limit {
		return nil
	}
	for _, a := range el.Attr {
		out.CreateAttr(a.FullKey(), a.Value)
		if serializedLen(out) > limit {
			out.RemoveAttr(a.FullKey())
			return out
		}
	}

	// Length of "<tag ...></tag>" with no content.
	out.AddChild(etree.NewText(""))
	used := serializedLen(out)
	out.RemoveChildAt(0)
	if used > limit {
		return out
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n := serializedLen(t)
			if used+n <= limit {
				out.AddChild(t.Copy())
				used += n
				continue
			}
			if child := fitElement(t, limit-used); child != nil {
				out.AddChild(child)
			}
			return out
		case *etree.CharData:
			n := textLen(t.Data)
			if used+n <= limit {
				out.AddChild(etree.NewText(t.Data))
				used += n
				continue
			}
			if text := fitText(t.Data, limit-used); text != "" {
				out.AddChild(etree.NewText(text))
			}
			return out
		}
	}
	return out
}

// textLen is the serialized length of data as element content.
func textLen(data string) int {
	holder := etree.NewElement("t")
	holder.AddChild(etree.NewText(data))
	return serializedLen(holder) - len("<t></t>")
}

// fitText returns the longest prefix of data whose escaped form fits budget,
// or "" when only whitespace would fit.
func fitText(data string, budget int) string {
	runes := []rune(data)
	lo, hi := 0, min(len(runes), budget)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if textLen(string(runes[:mid])) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	text := string(runes[:lo])
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
