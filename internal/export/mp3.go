// Package export writes cached recitation audio to disk as tagged MP3 files.
// The payload bytes are written verbatim; only ID3v2 metadata is added.
package export

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bogem/id3v2/v2"

	"github.com/mzahid/tartil/internal/constants"
	"github.com/mzahid/tartil/internal/domain"
	"github.com/mzahid/tartil/internal/filesystem"
)

// SaveMP3 decodes the item's payload into dir and tags it with the content
// key and source text. Returns the written file path.
func SaveMP3(item *domain.AudioItem, dir string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(item.Payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode audio payload for item %d: %w", item.ID, err)
	}

	if err := filesystem.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	name := filesystem.Sanitize(item.ContentKey)
	if name == "" {
		name = fmt.Sprintf("recitation-%d", item.ID)
	}
	path := filepath.Join(dir, name+constants.ExtMP3)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	if err := writeTags(path, item); err != nil {
		// Leave the untagged file in place: the audio itself is intact.
		return path, fmt.Errorf("failed to tag %s: %w", path, err)
	}
	return path, nil
}

func writeTags(path string, item *domain.AudioItem) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close() //nolint:errcheck // deferred cleanup

	tag.SetVersion(4)
	tag.SetTitle(item.ContentKey)
	tag.SetAlbum("Tartil Recitations")

	if item.SourceText != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "ara",
			Description: "source text",
			Text:        item.SourceText,
		})
	}

	return tag.Save()
}
