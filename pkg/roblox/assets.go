package roblox

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var assetTypeNames = map[int]string{
	1: "Image", 2: "T-Shirt", 3: "Audio", 4: "Mesh",
	5: "Lua", 8: "Hat", 9: "Place", 10: "Model",
	11: "Shirt", 12: "Pants", 13: "Decal", 17: "Head",
	18: "Face", 19: "Gear", 21: "Badge", 24: "Animation",
	27: "Torso", 28: "Right Arm", 29: "Left Arm",
	30: "Left Leg", 31: "Right Leg", 32: "Package",
	34: "GamePass", 38: "Plugin", 40: "MeshPart",
	41: "Hair", 42: "Face Acc", 43: "Neck Acc",
	44: "Shoulder", 45: "Front Acc", 46: "Back Acc",
	47: "Waist Acc",
}

var assetExtensions = map[int]string{
	1: ".png", 2: ".png", 3: ".ogg", 4: ".mesh",
	10: ".rbxm", 11: ".png", 12: ".png", 13: ".png",
	24: ".rbxm", 38: ".rbxm", 40: ".rbxm",
}

// AssetTypeName returns the name of an asset type id, or "Unknown".
func AssetTypeName(typeID int) string {
	if name, ok := assetTypeNames[typeID]; ok {
		return name
	}
	return "Unknown"
}

// Downloadable reports whether assets of this type can be fetched from the
// asset delivery API.
func Downloadable(typeID int) bool {
	_, ok := assetExtensions[typeID]
	return ok
}

// Download is a fetched asset file.
type Download struct {
	AssetID  int64
	Name     string
	TypeID   int
	Ext      string
	Data     []byte
	Filename string
}

// TypeName returns the asset type name.
func (d Download) TypeName() string {
	return AssetTypeName(d.TypeID)
}

var (
	unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	xmlURL         = regexp.MustCompile(`<url>([^<]+)</url>`)
	anyURL         = regexp.MustCompile(`(https?://[^"<>\s]+)`)
	digits         = regexp.MustCompile(`(\d+)`)
)

// minTextureBytes rejects error pages returned in place of a texture.
const minTextureBytes = 100

// DownloadAsset fetches an asset file. Asset details are best-effort and
// only name the file; clothing and decal assets are resolved to their
// texture image.
func (s *Service) DownloadAsset(ctx context.Context, assetID int64) (Download, error) {
	d := Download{AssetID: assetID, Name: strconv.FormatInt(assetID, 10)}

	if info, err := s.Asset(ctx, assetID); err == nil {
		d.TypeID = info.AssetTypeID
		if info.Name != "" {
			d.Name = info.Name
		}
	} else {
		s.logger.Debug().Err(err).Int64("asset_id", assetID).Msg("Asset details unavailable")
	}

	data, err := s.fetchAssetBytes(ctx, assetID)
	if err != nil {
		return Download{}, err
	}
	d.Data = data

	d.Ext = ".bin"
	if ext, ok := assetExtensions[d.TypeID]; ok {
		d.Ext = ext
	}

	switch d.TypeID {
	case 2, 11, 12, 13:
		if tex := s.resolveTexture(ctx, data); tex != nil {
			d.Data = tex
			d.Ext = ".png"
		}
	case 3:
		d.Ext = sniffAudio(data, d.Ext)
	}

	safe := unsafeFilename.ReplaceAllString(d.Name, "_")
	if len(safe) > 50 {
		safe = safe[:50]
	}
	d.Filename = fmt.Sprintf("%s_%d%s", safe, assetID, d.Ext)

	return d, nil
}

// fetchAssetBytes tries both asset delivery URLs and returns the first
// non-empty 200 body.
func (s *Service) fetchAssetBytes(ctx context.Context, assetID int64) ([]byte, error) {
	id := strconv.FormatInt(assetID, 10)
	attempts := []struct {
		url   string
		query url.Values
	}{
		{url: s.endpoints.AssetDelivery + "/v1/asset/", query: url.Values{"id": {id}}},
		{url: s.endpoints.AssetDelivery + "/v1/assetId/" + id},
	}

	var lastErr error
	for _, a := range attempts {
		body, status, err := s.api.GetRaw(ctx, a.url, a.query)
		if err != nil {
			lastErr = err
			continue
		}
		if status == http.StatusOK && len(body) > 0 {
			return body, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("download asset %d: %w", assetID, lastErr)
	}
	return nil, notFound("asset %d has no downloadable content", assetID)
}

// resolveTexture follows the texture reference inside a clothing or decal
// asset and returns the image bytes, or nil.
func (s *Service) resolveTexture(ctx context.Context, data []byte) []byte {
	text := string(data)

	m := xmlURL.FindStringSubmatch(text)
	if m == nil {
		m = anyURL.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}

	tex := strings.Replace(m[1], "http://", "https://", 1)
	var query url.Values
	if strings.Contains(tex, "rbxassetid://") {
		id := digits.FindString(tex)
		if id == "" {
			return nil
		}
		tex = s.endpoints.AssetDelivery + "/v1/asset/"
		query = url.Values{"id": {id}}
	}

	body, status, err := s.api.GetRaw(ctx, tex, query)
	if err != nil || status != http.StatusOK || len(body) <= minTextureBytes {
		return nil
	}
	return body
}

// sniffAudio picks an audio extension from the file magic.
func sniffAudio(data []byte, fallback string) string {
	switch {
	case bytes.HasPrefix(data, []byte("OggS")):
		return ".ogg"
	case bytes.HasPrefix(data, []byte("ID3")), bytes.HasPrefix(data, []byte{0xff, 0xfb}):
		return ".mp3"
	case bytes.HasPrefix(data, []byte("RIFF")):
		return ".wav"
	}
	return fallback
}
