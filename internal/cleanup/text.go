package cleanup

import (
	"errors"
	"strings"
)

// ErrUnterminatedBlock reports a start marker with no matching end marker.
var ErrUnterminatedBlock = errors.New("unterminated block marker")

// RemoveBlocks deletes every marker-delimited block from content, including
// the marker lines themselves. Markers match by substring anywhere in a line.
//
// Content is split and rejoined on \n, so trailing-newline layout is
// preserved exactly. An absent marker pair is a no-op; a start marker with
// no end marker returns ErrUnterminatedBlock and the caller skips the file.
func RemoveBlocks(content, startMarker, endMarker string) (out string, blocks, lines int, err error) {
	if !strings.Contains(content, startMarker) {
		return content, 0, 0, nil
	}

	split := strings.Split(content, "\n")
	kept := make([]string, 0, len(split))
	inBlock := false
	for _, line := range split {
		switch {
		case !inBlock && strings.Contains(line, startMarker):
			inBlock = true
			blocks++
			lines++
		case inBlock:
			lines++
			if strings.Contains(line, endMarker) {
				inBlock = false
			}
		default:
			kept = append(kept, line)
		}
	}
	if inBlock {
		return content, 0, 0, ErrUnterminatedBlock
	}
	return strings.Join(kept, "\n"), blocks, lines, nil
}

// RemoveTaggedLines deletes every line containing tag.
// Idempotent: content without the tag passes through untouched.
func RemoveTaggedLines(content, tag string) (out string, lines int) {
	if !strings.Contains(content, tag) {
		return content, 0
	}

	split := strings.Split(content, "\n")
	kept := make([]string, 0, len(split))
	for _, line := range split {
		if strings.Contains(line, tag) {
			lines++
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), lines
}
