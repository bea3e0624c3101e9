package changes

import (
	"strconv"
	"strings"
)

const (
	diffGitHeaderPrefixConstant      = "diff --git "
	hunkHeaderPrefixConstant         = "@@"
	oldFileMarkerPrefixConstant      = "--- "
	binaryFilesPrefixConstant        = "Binary files "
	oldPathPrefixConstant            = "a/"
	newPathPrefixConstant            = "b/"
	newPathSeparatorConstant         = " b/"
	devNullPathConstant              = "/dev/null"
	lineTerminatorConstant           = "\n"
	quotedPathMarkerConstant         = '"'
	noNewlineMarkerConstant          = '\\'
	headerPathSeparatorConstant      = ' '
	markerTimestampSeparatorConstant = '\t'
)

// parsePatch splits git patch text into diff lines attributed to their old file path.
func parsePatch(patchText string) []DiffLine {
	var diffLines []DiffLine
	currentPath := ""
	insideHunk := false

	for _, rawLine := range splitPatchLines(patchText) {
		switch {
		case strings.HasPrefix(rawLine, diffGitHeaderPrefixConstant):
			currentPath = parseDiffHeaderPath(rawLine)
			insideHunk = false
			diffLines = append(diffLines, newDiffLine(currentPath, DiffLineFileHeader, rawLine))
		case strings.HasPrefix(rawLine, hunkHeaderPrefixConstant):
			insideHunk = true
			diffLines = append(diffLines, newDiffLine(currentPath, DiffLineHunkHeader, rawLine))
		case !insideHunk:
			if strings.HasPrefix(rawLine, oldFileMarkerPrefixConstant) {
				if markerPath := parseMarkerPath(rawLine[len(oldFileMarkerPrefixConstant):]); len(markerPath) > 0 {
					currentPath = markerPath
				}
			}
			origin := DiffLineFileHeader
			if strings.HasPrefix(rawLine, binaryFilesPrefixConstant) {
				origin = DiffLineBinary
			}
			diffLines = append(diffLines, newDiffLine(currentPath, origin, rawLine))
		default:
			origin := DiffLineOrigin(rawLine[0])
			switch {
			case origin.IsContent():
				diffLines = append(diffLines, newDiffLine(currentPath, origin, rawLine[1:]))
			case rawLine[0] == noNewlineMarkerConstant:
				diffLines = append(diffLines, newDiffLine(currentPath, DiffLineNoNewline, rawLine))
			default:
				insideHunk = false
				diffLines = append(diffLines, newDiffLine(currentPath, DiffLineFileHeader, rawLine))
			}
		}
	}

	return diffLines
}

func newDiffLine(path string, origin DiffLineOrigin, content string) DiffLine {
	return DiffLine{OldPath: path, Origin: origin, Content: []byte(content)}
}

func splitPatchLines(patchText string) []string {
	if len(patchText) == 0 {
		return nil
	}
	lines := strings.SplitAfter(patchText, lineTerminatorConstant)
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// parseDiffHeaderPath extracts the old path from a "diff --git a/<old> b/<new>" line.
func parseDiffHeaderPath(headerLine string) string {
	remainder := strings.TrimSuffix(strings.TrimPrefix(headerLine, diffGitHeaderPrefixConstant), lineTerminatorConstant)
	if len(remainder) == 0 {
		return ""
	}

	if remainder[0] == quotedPathMarkerConstant {
		quotedPrefix, prefixError := strconv.QuotedPrefix(remainder)
		if prefixError != nil {
			return ""
		}
		unquoted, unquoteError := strconv.Unquote(quotedPrefix)
		if unquoteError != nil {
			return ""
		}
		return strings.TrimPrefix(unquoted, oldPathPrefixConstant)
	}

	if len(remainder)%2 == 1 {
		middle := len(remainder) / 2
		oldHalf := remainder[:middle]
		newHalf := remainder[middle+1:]
		if remainder[middle] == headerPathSeparatorConstant &&
			strings.HasPrefix(oldHalf, oldPathPrefixConstant) &&
			strings.HasPrefix(newHalf, newPathPrefixConstant) &&
			oldHalf[len(oldPathPrefixConstant):] == newHalf[len(newPathPrefixConstant):] {
			return oldHalf[len(oldPathPrefixConstant):]
		}
	}

	if separatorIndex := strings.Index(remainder, newPathSeparatorConstant); separatorIndex > 0 {
		return strings.TrimPrefix(remainder[:separatorIndex], oldPathPrefixConstant)
	}
	return strings.TrimPrefix(remainder, oldPathPrefixConstant)
}

// parseMarkerPath extracts the path from the value of a "--- " marker, ignoring /dev/null.
func parseMarkerPath(markerValue string) string {
	trimmed := strings.TrimSuffix(markerValue, lineTerminatorConstant)
	if separatorIndex := strings.IndexByte(trimmed, markerTimestampSeparatorConstant); separatorIndex >= 0 {
		trimmed = trimmed[:separatorIndex]
	}
	if len(trimmed) > 0 && trimmed[0] == quotedPathMarkerConstant {
		unquoted, unquoteError := strconv.Unquote(trimmed)
		if unquoteError != nil {
			return ""
		}
		trimmed = unquoted
	}
	if trimmed == devNullPathConstant || !strings.HasPrefix(trimmed, oldPathPrefixConstant) {
		return ""
	}
	return trimmed[len(oldPathPrefixConstant):]
}
