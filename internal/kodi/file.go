// SPDX-License-Identifier: MIT

package kodi

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ManuGH/mytv/internal/fsutil"
)

// settingsVersion is the settings.xml format written by Kodi 18 and later.
const settingsVersion = "2"

type settingsDoc struct {
	XMLName  xml.Name     `xml:"settings"`
	Version  string       `xml:"version,attr,omitempty"`
	Settings []settingXML `xml:"setting"`
}

type settingXML struct {
	ID      string `xml:"id,attr"`
	Default string `xml:"default,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// RenderXML writes settings as a settings.xml document.
func RenderXML(w io.Writer, settings Settings) error {
	doc := settingsDoc{Version: settingsVersion}
	for _, s := range settings {
		doc.Settings = append(doc.Settings, settingXML{ID: s.ID, Value: s.Value})
	}
	return encode(w, doc)
}

func encode(w io.Writer, doc settingsDoc) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode settings.xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// FileSink edits an add-on settings.xml in place. Settings it does not touch
// keep their values and attributes. Changes are written by Save.
type FileSink struct {
	path string
	doc  settingsDoc
}

// OpenFileSink reads path. A missing file starts an empty version 2 document.
func OpenFileSink(path string) (*FileSink, error) {
	fsk := &FileSink{path: path, doc: settingsDoc{Version: settingsVersion}}

	raw, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return fsk, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = true
	dec.Entity = make(map[string]string)
	if err := dec.Decode(&fsk.doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fsk, nil
}

// SetSetting updates id or appends it. A value set explicitly is no longer the
// add-on default, so the default marker is dropped.
func (f *FileSink) SetSetting(id, value string) error {
	if id == "" {
		return errors.New("empty setting id")
	}
	for i := range f.doc.Settings {
		if f.doc.Settings[i].ID == id {
			f.doc.Settings[i].Value = value
			f.doc.Settings[i].Default = ""
			return nil
		}
	}
	f.doc.Settings = append(f.doc.Settings, settingXML{ID: id, Value: value})
	return nil
}

// Settings returns the current document contents.
func (f *FileSink) Settings() Settings {
	out := make(Settings, 0, len(f.doc.Settings))
	for _, s := range f.doc.Settings {
		out = append(out, Setting{ID: s.ID, Value: s.Value})
	}
	return out
}

// Save atomically replaces the settings file, creating its directory.
func (f *FileSink) Save(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	var buf bytes.Buffer
	if err := encode(&buf, f.doc); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(ctx, f.path, buf.Bytes(), 0o644)
}
