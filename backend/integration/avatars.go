// Copyright (C) 2025 fleexta.app <dev@fleexta.app>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package integration holds clients for the external collaborators the
// core delegates to. Avatar rendering is one of them: the renderer
// service draws the initial-letter image; when it is unreachable or not
// configured, registration falls back to a flat-color placeholder so
// account creation never depends on the renderer being up.
package integration

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const avatarSize = 256

type AvatarRenderer struct {
	baseURL string
	client  *http.Client
}

// NewAvatarRenderer points at the renderer service. An empty baseURL
// disables the remote call entirely.
func NewAvatarRenderer(baseURL string) *AvatarRenderer {
	return &AvatarRenderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Render returns PNG bytes for a fresh account avatar.
func (r *AvatarRenderer) Render(username string) []byte {
	if r.baseURL != "" {
		if data, err := r.remote(username); err == nil {
			return data
		} else {
			log.Printf("avatar renderer unavailable, using placeholder: %v", err)
		}
	}
	return placeholderAvatar(username)
}

func (r *AvatarRenderer) remote(username string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/render?username=%s", r.baseURL, url.QueryEscape(username))
	resp, err := r.client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// placeholderAvatar fills a square with a color derived from the
// username, so placeholders are stable per account.
func placeholderAvatar(username string) []byte {
	h := fnv.New32a()
	h.Write([]byte(username))
	sum := h.Sum32()

	fill := color.RGBA{
		R: uint8(sum),
		G: uint8(sum >> 8),
		B: uint8(sum >> 16),
		A: 255,
	}

	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	for y := 0; y < avatarSize; y++ {
		for x := 0; x < avatarSize; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
