package changes

import (
	"errors"
	"fmt"
	"strings"
)

const (
	porcelainRecordSeparatorConstant         = "\x00"
	porcelainOrdinaryRecordConstant          = '1'
	porcelainRenameRecordConstant            = '2'
	porcelainUnmergedRecordConstant          = 'u'
	porcelainUntrackedRecordConstant         = '?'
	porcelainIgnoredRecordConstant           = '!'
	porcelainHeaderRecordConstant            = '#'
	porcelainOrdinaryFieldCountConstant      = 9
	porcelainRenameFieldCountConstant        = 10
	porcelainUnmergedFieldCountConstant      = 11
	porcelainFieldSeparatorConstant          = " "
	porcelainUnchangedStateConstant          = '.'
	porcelainMalformedOutputMessageConstant  = "malformed porcelain status output"
	porcelainMalformedRecordTemplateConstant = "%w: unexpected record %q"
	porcelainMissingSourceTemplateConstant   = "%w: rename record for %q is missing its source path"
	porcelainUntrackedPathOffsetConstant     = 2
	porcelainStatusCodeFieldIndexConstant    = 1
	porcelainStatusCodeLengthConstant        = 2
	porcelainIndexStateOffsetConstant        = 0
	porcelainWorktreeStateOffsetConstant     = 1
)

// errMalformedPorcelain marks records that do not follow the porcelain v2 layout.
var errMalformedPorcelain = errors.New(porcelainMalformedOutputMessageConstant)

// parsePorcelainStatus parses "git status --porcelain=v2 -z" output into status entries, preserving record order.
func parsePorcelainStatus(output string) ([]StatusEntry, error) {
	records := strings.Split(output, porcelainRecordSeparatorConstant)
	entries := make([]StatusEntry, 0, len(records))

	for recordIndex := 0; recordIndex < len(records); recordIndex++ {
		record := records[recordIndex]
		if len(record) == 0 {
			continue
		}

		switch record[0] {
		case porcelainHeaderRecordConstant, porcelainIgnoredRecordConstant:
			continue
		case porcelainUntrackedRecordConstant:
			if len(record) <= porcelainUntrackedPathOffsetConstant {
				return nil, fmt.Errorf(porcelainMalformedRecordTemplateConstant, errMalformedPorcelain, record)
			}
			entries = append(entries, StatusEntry{Path: record[porcelainUntrackedPathOffsetConstant:], Flags: StatusNewInWorkdir})
		case porcelainOrdinaryRecordConstant:
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainOrdinaryFieldCountConstant)
			if len(fields) != porcelainOrdinaryFieldCountConstant {
				return nil, fmt.Errorf(porcelainMalformedRecordTemplateConstant, errMalformedPorcelain, record)
			}
			flags, flagsError := porcelainStatusFlags(fields[porcelainStatusCodeFieldIndexConstant])
			if flagsError != nil {
				return nil, flagsError
			}
			entries = append(entries, StatusEntry{Path: fields[len(fields)-1], Flags: flags})
		case porcelainRenameRecordConstant:
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainRenameFieldCountConstant)
			if len(fields) != porcelainRenameFieldCountConstant {
				return nil, fmt.Errorf(porcelainMalformedRecordTemplateConstant, errMalformedPorcelain, record)
			}
			flags, flagsError := porcelainStatusFlags(fields[porcelainStatusCodeFieldIndexConstant])
			if flagsError != nil {
				return nil, flagsError
			}
			path := fields[len(fields)-1]
			if recordIndex+1 >= len(records) {
				return nil, fmt.Errorf(porcelainMissingSourceTemplateConstant, errMalformedPorcelain, path)
			}
			recordIndex++
			entries = append(entries, StatusEntry{Path: path, OriginalPath: records[recordIndex], Flags: flags})
		case porcelainUnmergedRecordConstant:
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainUnmergedFieldCountConstant)
			if len(fields) != porcelainUnmergedFieldCountConstant {
				return nil, fmt.Errorf(porcelainMalformedRecordTemplateConstant, errMalformedPorcelain, record)
			}
			entries = append(entries, StatusEntry{Path: fields[len(fields)-1]})
		default:
			return nil, fmt.Errorf(porcelainMalformedRecordTemplateConstant, errMalformedPorcelain, record)
		}
	}

	return entries, nil
}

// porcelainStatusFlags converts an XY status code into status flags.
func porcelainStatusFlags(statusCode string) (StatusFlags, error) {
	if len(statusCode) != porcelainStatusCodeLengthConstant {
		return 0, fmt.Errorf(porcelainMalformedRecordTemplateConstant, errMalformedPorcelain, statusCode)
	}

	var flags StatusFlags
	switch statusCode[porcelainIndexStateOffsetConstant] {
	case 'A', 'C':
		flags |= StatusNewInIndex
	case 'M', 'T':
		flags |= StatusModifiedInIndex
	case 'D':
		flags |= StatusDeletedInIndex
	case 'R':
		flags |= StatusRenamedInIndex
	case porcelainUnchangedStateConstant:
	}
	switch statusCode[porcelainWorktreeStateOffsetConstant] {
	case 'A':
		flags |= StatusNewInWorkdir
	case 'M', 'T':
		flags |= StatusModifiedInWorkdir
	case 'D':
		flags |= StatusDeletedInWorkdir
	case 'R':
		flags |= StatusRenamedInWorkdir
	case porcelainUnchangedStateConstant:
	}
	return flags, nil
}
