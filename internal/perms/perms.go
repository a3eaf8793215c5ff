// Package perms compiles symbolic permission specs ("u=rwx,g=rx,o=r")
// into numeric file modes.
//
// A spec is a comma-separated list of clauses, each <targets><op><letters>:
// targets are a subset of u, g, o (or a for all three), the operator is
// = (replace), + (add) or - (remove), and the letters are r, w, x, X
// (execute only for directories), s (setuid/setgid) and t (sticky).
// With = the single letter - stands for "no bits" and clears the
// category. Clauses apply strictly left to right to four accumulators
// that start at zero on every call.
//
// Each special bit belongs to one category: setuid to owner, setgid to
// group, sticky to other. A clause's s letter contributes the bit for
// whichever of owner/group it targets, t contributes sticky when the
// clause targets other, and = overwrites the targeted categories'
// special bits along with their permission bits.
package perms

import (
	"fmt"
	"strings"

	"github.com/up-stack/up/internal/errors"
)

// Permission bit values within one category.
const (
	bitRead    = 4
	bitWrite   = 2
	bitExecute = 1
)

// Special field sub-bits, one per category.
const (
	bitSetuid = 4
	bitSetgid = 2
	bitSticky = 1
)

const (
	catOwner = iota
	catGroup
	catOther
	catCount
)

var specialBit = [catCount]uint32{catOwner: bitSetuid, catGroup: bitSetgid, catOther: bitSticky}

// clause is one parsed <targets><op><letters> unit.
type clause struct {
	targets [catCount]bool
	op      byte
	mask    uint32           // r/w/x/X bits
	special [catCount]uint32 // per-category special contribution
}

// Compile turns a symbolic permission spec into a numeric mode.
// isDirectory controls the conditional-execute letter X: it contributes
// execute only for directories.
func Compile(spec string, isDirectory bool) (uint32, error) {
	var perm [catCount]uint32
	var special uint32

	for _, text := range strings.Split(spec, ",") {
		cl, err := parseClause(spec, text, isDirectory)
		if err != nil {
			return 0, err
		}

		for cat := 0; cat < catCount; cat++ {
			if !cl.targets[cat] {
				continue
			}
			switch cl.op {
			case '=':
				perm[cat] = cl.mask
				special = special&^specialBit[cat] | cl.special[cat]
			case '+':
				perm[cat] |= cl.mask
				special |= cl.special[cat]
			case '-':
				perm[cat] &^= cl.mask
				special &^= cl.special[cat]
			}
		}
	}

	mode := special<<9 | perm[catOwner]<<6 | perm[catGroup]<<3 | perm[catOther]
	return mode, nil
}

func parseClause(spec, text string, isDirectory bool) (*clause, error) {
	cl := &clause{}

	i := 0
scan:
	for ; i < len(text); i++ {
		switch text[i] {
		case 'u':
			cl.targets[catOwner] = true
		case 'g':
			cl.targets[catGroup] = true
		case 'o':
			cl.targets[catOther] = true
		case 'a':
			cl.targets[catOwner] = true
			cl.targets[catGroup] = true
			cl.targets[catOther] = true
		default:
			break scan
		}
	}

	if i == 0 {
		return nil, errors.PermInvalidSpec(spec, fmt.Sprintf("clause %q has no targets", text))
	}
	if i >= len(text) {
		return nil, errors.PermInvalidSpec(spec, fmt.Sprintf("clause %q has no operator", text))
	}
	switch text[i] {
	case '=', '+', '-':
		cl.op = text[i]
	default:
		return nil, errors.PermInvalidSpec(spec,
			fmt.Sprintf("clause %q has invalid operator %q", text, string(text[i])))
	}

	letters := text[i+1:]
	if letters == "-" {
		// The no-op token: "no bits", only meaningful as a full
		// replacement.
		if cl.op != '=' {
			return nil, errors.PermInvalidSpec(spec,
				fmt.Sprintf("clause %q uses the no-op token with %q", text, string(cl.op)))
		}
		return cl, nil
	}

	for _, letter := range letters {
		switch letter {
		case 'r':
			cl.mask |= bitRead
		case 'w':
			cl.mask |= bitWrite
		case 'x':
			cl.mask |= bitExecute
		case 'X':
			if isDirectory {
				cl.mask |= bitExecute
			}
		case 's':
			if cl.targets[catOwner] {
				cl.special[catOwner] |= bitSetuid
			}
			if cl.targets[catGroup] {
				cl.special[catGroup] |= bitSetgid
			}
		case 't':
			if cl.targets[catOther] {
				cl.special[catOther] |= bitSticky
			}
		default:
			return nil, errors.PermInvalidSpec(spec,
				fmt.Sprintf("clause %q has unknown letter %q", text, string(letter)))
		}
	}

	return cl, nil
}
