package playlist

import (
	"path/filepath"
	"strings"
)

// fileKind classifies a playlist import candidate by extension. The
// source classifies by BMimeType/app_info lookup against BeOS's
// registered MIME database; Go has no equivalent system MIME registry
// wired into the pack's examples, so this is an extension table instead
// — documented as a simplification, not a gap, since no pack example
// imports a MIME-sniffing library either.
type fileKind int

const (
	kindOther fileKind = iota
	kindDirectory
	kindMedia
	kindImage
	kindSubtitle
	kindTextPlaylist
	kindBinaryPlaylist
)

var mediaExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true, ".ogg": true, ".m4a": true,
	".aac": true, ".opus": true, ".wma": true,
	".mp4": true, ".m4v": true, ".mkv": true, ".avi": true, ".mov": true,
	".webm": true, ".flv": true, ".wmv": true, ".ts": true, ".mpg": true,
	".mpeg": true, ".3gp": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

var textPlaylistExtensions = map[string]bool{
	".m3u": true, ".m3u8": true, ".pls": true,
}

// subtitleExtensions are recognized for sibling binding only (§4.9's
// worked example: a `.srt` beside a `.mp4` binds rather than standing
// alone) — the source's own `_BindExtraMedia` only ever binds media or
// image siblings, since BeOS attaches subtitles to a track supplier a
// different way; the playback core attaches them to the playlist item
// instead (§4.6 external subtitle files), so this extension set widens
// the binding beyond what _BindExtraMedia recognizes.
var subtitleExtensions = map[string]bool{
	".srt": true,
}

func classifyExtension(path string) fileKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == binaryPlaylistExtension:
		return kindBinaryPlaylist
	case textPlaylistExtensions[ext]:
		return kindTextPlaylist
	case mediaExtensions[ext]:
		return kindMedia
	case imageExtensions[ext]:
		return kindImage
	case subtitleExtensions[ext]:
		return kindSubtitle
	default:
		return kindOther
	}
}

// exceptExtension returns path with its extension stripped, the basis
// for sibling-binding comparisons (§4.9: "same base name, different
// extension"). Grounded on Playlist::_GetExceptExtension, which only
// strips a trailing extension if the last '.' comes after the last '/'.
func exceptExtension(path string) string {
	dot := strings.LastIndexByte(path, '.')
	slash := strings.LastIndexByte(path, '/')
	if dot <= slash {
		return path
	}
	return path[:dot]
}
