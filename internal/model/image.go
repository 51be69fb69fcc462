// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Image position tags. A descriptor tagged "hero" renders above the post
// title; "index-N" descriptors are anchored to content position N. A
// descriptor without a position is kept in the list but is not addressable
// through Hero or ByIndex.
const (
	ImagePositionHero        = "hero"
	ImagePositionIndexPrefix = "index-"
)

// Image describes one image attachment of a post. All fields are opaque
// strings; the application stores descriptors, not binary image data.
type Image struct {
	Src      string `json:"src"`
	Alt      string `json:"alt"`
	Caption  string `json:"caption"`
	Position string `json:"position"`
}

// ImageList is an ordered collection of image descriptors. It is persisted
// as a single JSON-encoded text column on the post row.
type ImageList []Image

// DecodeImages parses the persisted image field into an ImageList.
// Blank input yields an empty list. Malformed input also yields an empty
// list: a post with corrupt image data must still be readable, so decode
// never returns an error.
func DecodeImages(raw string) ImageList {
	if strings.TrimSpace(raw) == "" {
		return ImageList{}
	}
	var images ImageList
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return ImageList{}
	}
	if images == nil {
		return ImageList{}
	}
	return images
}

// Encode serializes the list to its canonical persisted form.
// A nil list encodes as "[]".
func (l ImageList) Encode() string {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Hero returns the first descriptor at the "hero" position.
func (l ImageList) Hero() (Image, bool) {
	for _, img := range l {
		if img.Position == ImagePositionHero {
			return img, true
		}
	}
	return Image{}, false
}

// HasHero reports whether a hero descriptor is present.
func (l ImageList) HasHero() bool {
	_, ok := l.Hero()
	return ok
}

// ByIndex returns the first descriptor at position "index-{n}".
func (l ImageList) ByIndex(n int) (Image, bool) {
	want := ImagePositionIndexPrefix + strconv.Itoa(n)
	for _, img := range l {
		if img.Position == want {
			return img, true
		}
	}
	return Image{}, false
}

// Indexed returns all descriptors whose position starts with "index-",
// sorted ascending by the integer suffix. Gaps in the index sequence are
// permitted; a malformed suffix sorts as 0 rather than failing.
func (l ImageList) Indexed() ImageList {
	indexed := make(ImageList, 0, len(l))
	for _, img := range l {
		if strings.HasPrefix(img.Position, ImagePositionIndexPrefix) {
			indexed = append(indexed, img)
		}
	}
	sort.SliceStable(indexed, func(i, j int) bool {
		return positionIndex(indexed[i].Position) < positionIndex(indexed[j].Position)
	})
	return indexed
}

// Count returns the total number of descriptors.
func (l ImageList) Count() int {
	return len(l)
}

// positionIndex extracts the numeric suffix after the last hyphen of an
// index position tag. Non-numeric suffixes parse as 0 for sorting only.
func positionIndex(position string) int {
	suffix := position
	if i := strings.LastIndex(position, "-"); i >= 0 {
		suffix = position[i+1:]
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return n
}

// imagesInputKind discriminates the accepted shapes of an images write.
type imagesInputKind int

const (
	imagesInputNone imagesInputKind = iota
	imagesInputList
	imagesInputText
)

// ImagesInput is a tagged-union of the shapes an images write may arrive
// in: a decoded descriptor list, pre-encoded text (e.g. from a form field),
// or nothing at all. Normalize converts any of them to the canonical
// persisted form without ever failing; unparseable input degrades to an
// empty list. This tolerance is a documented contract of the write path.
type ImagesInput struct {
	kind imagesInputKind
	list ImageList
	text string
}

// ImagesFromList builds an input from an in-memory descriptor list.
func ImagesFromList(list ImageList) ImagesInput {
	return ImagesInput{kind: imagesInputList, list: list}
}

// ImagesFromText builds an input from untrusted pre-encoded text.
func ImagesFromText(text string) ImagesInput {
	return ImagesInput{kind: imagesInputText, text: text}
}

// ImagesNone builds an absent input, which normalizes to an empty list.
func ImagesNone() ImagesInput {
	return ImagesInput{kind: imagesInputNone}
}

// ImagesFromJSON builds an input from a raw JSON value as submitted to the
// API: an array is taken as a descriptor list, a string as pre-encoded
// text, anything else (null, absent, wrong shape) as no images.
func ImagesFromJSON(raw json.RawMessage) ImagesInput {
	// json.Unmarshal turns "null" into a nil list, which would read as an
	// explicit clear; a null images field means the caller sent nothing.
	if len(raw) == 0 || string(raw) == "null" {
		return ImagesNone()
	}
	var list ImageList
	if err := json.Unmarshal(raw, &list); err == nil {
		return ImagesFromList(list)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return ImagesFromText(text)
	}
	return ImagesNone()
}

// IsSet reports whether the input carries a value at all. Update paths use
// this to leave the stored field untouched when the caller omitted it.
func (in ImagesInput) IsSet() bool {
	return in.kind != imagesInputNone
}

// Normalize converts the input to the canonical encoded text form.
func (in ImagesInput) Normalize() string {
	switch in.kind {
	case imagesInputList:
		return in.list.Encode()
	case imagesInputText:
		return DecodeImages(in.text).Encode()
	default:
		return ImageList{}.Encode()
	}
}
