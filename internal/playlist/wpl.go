package playlist

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// WPL structure based on Windows Media Player playlist format
type WPL struct {
	XMLName xml.Name `xml:"smil"`
	Head    WPLHead  `xml:"head"`
	Body    WPLBody  `xml:"body"`
}

type WPLHead struct {
	Title string `xml:"title"`
}

type WPLBody struct {
	Seq WPLSeq `xml:"seq"`
}

type WPLSeq struct {
	Media []WPLMedia `xml:"media"`
}

type WPLMedia struct {
	Src string `xml:"src,attr"`
}

// ParseWPL reads a Windows Media Player playlist.
func ParseWPL(wplPath, musicDir string) (*Playlist, error) {
	data, err := os.ReadFile(wplPath)
	if err != nil {
		return nil, err
	}

	var wpl WPL
	if err := xml.Unmarshal(data, &wpl); err != nil {
		return nil, fmt.Errorf("invalid WPL playlist %s: %w", wplPath, err)
	}

	playlist := &Playlist{
		Name:  playlistName(wpl.Head.Title, wplPath),
		Path:  wplPath,
		Items: []Item{},
	}

	wplDir := filepath.Dir(wplPath)
	for _, media := range wpl.Body.Seq.Media {
		playlist.Items = append(playlist.Items, resolveEntry(media.Src, wplDir, musicDir))
	}

	playlist.Count = len(playlist.Items)
	return playlist, nil
}
