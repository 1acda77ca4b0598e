package vector

import "strings"

const (
	// chunkSize is the target chunk length in characters.
	chunkSize = 1200
	// chunkOverlap carries trailing context into the next chunk.
	chunkOverlap = 150
)

// Chunk splits text into overlapping chunks, preferring paragraph then line
// boundaries so table rows and statement lines stay intact.
func Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= chunkSize {
			chunks = append(chunks, text)
			break
		}

		cut := chunkSize
		window := text[:chunkSize]
		if i := strings.LastIndex(window, "\n\n"); i > chunkSize/2 {
			cut = i
		} else if i := strings.LastIndex(window, "\n"); i > chunkSize/2 {
			cut = i
		} else if i := strings.LastIndex(window, " "); i > chunkSize/2 {
			cut = i
		}

		chunks = append(chunks, strings.TrimSpace(text[:cut]))

		next := cut - chunkOverlap
		if next < 1 {
			next = cut
		}
		text = strings.TrimSpace(text[next:])
	}
	return chunks
}
