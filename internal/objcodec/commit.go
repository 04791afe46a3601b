package objcodec

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rybkr/dircache/internal/objstore"
)

// forbiddenSigChars must never appear in a signature field: a raw
// newline or angle bracket would break the "<name> <<email>> ..." line
// format, so they are stripped on the way out.
const forbiddenSigChars = "\n<>"

// Signature is the author or committer of a commit: a name, an email,
// and a point in time expressed as git's "<unix-seconds> <+HHMM>" pair.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Line renders the signature as it appears in a commit object body:
// "<name> <<email>> <unix> <tz>".
func (sig Signature) Line() string {
	return fmt.Sprintf("%s <%s> %d %s",
		sanitize(sig.Name), sanitize(sig.Email), sig.When.Unix(), sig.When.Format("-0700"))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenSigChars, r) {
			return -1
		}
		return r
	}, s)
}

// CommitInfo holds everything needed to build a commit object body.
// Parents is ordered; permuting it changes the resulting digest.
type CommitInfo struct {
	Tree      objstore.Digest
	Parents   []objstore.Digest
	Author    Signature
	Committer Signature
	Message   []byte
}

// EncodeCommit builds the line-oriented commit body (tree, parents,
// author, committer, blank line, message), frames it, and writes it to s.
func EncodeCommit(s *objstore.Store, info CommitInfo) (objstore.Digest, error) {
	var body bytes.Buffer
	fmt.Fprintf(&body, "tree %s\n", info.Tree.ToHex())
	for _, p := range info.Parents {
		fmt.Fprintf(&body, "parent %s\n", p.ToHex())
	}
	fmt.Fprintf(&body, "author %s\n", info.Author.Line())
	fmt.Fprintf(&body, "committer %s\n", info.Committer.Line())
	body.WriteByte('\n')
	body.Write(info.Message)

	digest, err := s.Write(frame("commit", body.Bytes()))
	if err != nil {
		return objstore.Digest{}, fmt.Errorf("objcodec: encoding commit: %w", err)
	}
	return digest, nil
}

// DecodeCommit reads a commit object back from s and parses its body.
func DecodeCommit(s *objstore.Store, digest objstore.Digest) (CommitInfo, error) {
	objType, _, payload, err := s.Read(digest)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("objcodec: decoding commit %s: %w", digest, err)
	}
	if objType != "commit" {
		return CommitInfo{}, fmt.Errorf("objcodec: object %s is a %q, not a commit", digest, objType)
	}
	return parseCommitBody(payload)
}

func parseCommitBody(body []byte) (CommitInfo, error) {
	var info CommitInfo
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	inMessage := false
	var messageLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if inMessage {
			messageLines = append(messageLines, line)
			continue
		}
		if line == "" {
			inMessage = true
			continue
		}

		switch {
		case strings.HasPrefix(line, "tree "):
			d, err := objstore.FromHex(strings.TrimPrefix(line, "tree "))
			if err != nil {
				return CommitInfo{}, fmt.Errorf("objcodec: malformed tree line %q: %w", line, err)
			}
			info.Tree = d
		case strings.HasPrefix(line, "parent "):
			d, err := objstore.FromHex(strings.TrimPrefix(line, "parent "))
			if err != nil {
				return CommitInfo{}, fmt.Errorf("objcodec: malformed parent line %q: %w", line, err)
			}
			info.Parents = append(info.Parents, d)
		case strings.HasPrefix(line, "author "):
			sig, err := parseSignature(strings.TrimPrefix(line, "author "))
			if err != nil {
				return CommitInfo{}, fmt.Errorf("objcodec: malformed author line: %w", err)
			}
			info.Author = sig
		case strings.HasPrefix(line, "committer "):
			sig, err := parseSignature(strings.TrimPrefix(line, "committer "))
			if err != nil {
				return CommitInfo{}, fmt.Errorf("objcodec: malformed committer line: %w", err)
			}
			info.Committer = sig
		default:
			return CommitInfo{}, fmt.Errorf("objcodec: unrecognized commit header line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return CommitInfo{}, fmt.Errorf("objcodec: scanning commit body: %w", err)
	}

	info.Message = []byte(strings.Join(messageLines, "\n"))
	return info, nil
}

// parseSignature parses a "<name> <<email>> <unix> <tz>" line.
func parseSignature(line string) (Signature, error) {
	openIdx := strings.LastIndex(line, "<")
	closeIdx := strings.LastIndex(line, ">")
	if openIdx == -1 || closeIdx == -1 || closeIdx < openIdx {
		return Signature{}, fmt.Errorf("missing <email>: %q", line)
	}

	name := strings.TrimSpace(line[:openIdx])
	email := line[openIdx+1 : closeIdx]

	rest := strings.Fields(line[closeIdx+1:])
	if len(rest) == 0 {
		return Signature{}, fmt.Errorf("missing timestamp: %q", line)
	}

	unixSecs, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid timestamp %q: %w", rest[0], err)
	}

	loc := time.UTC
	if len(rest) >= 2 {
		if parsed, ok := parseTZ(rest[1]); ok {
			loc = parsed
		}
	}

	return Signature{Name: name, Email: email, When: time.Unix(unixSecs, 0).In(loc)}, nil
}

func parseTZ(tz string) (*time.Location, bool) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, false
	}
	hours, err1 := strconv.Atoi(tz[1:3])
	mins, err2 := strconv.Atoi(tz[3:5])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	offset := hours*3600 + mins*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), true
}
