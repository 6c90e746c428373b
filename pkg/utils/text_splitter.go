package utils

import "unicode"

// SplitText cuts text into pieces of at most chunkSize runes, each sharing `overlap` runes with
// the previous one. A cut prefers the last whitespace inside the window so words stay whole;
// a window without whitespace is cut hard.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if chunkSize <= 0 || totalLen <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	for start := 0; start < totalLen; {
		end := start + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := end
		for i := end; i > start+overlap; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// RuneLen counts characters the way SplitText does.
func RuneLen(s string) int {
	return len([]rune(s))
}
