// Package identity resolves the author/committer fields attached to a
// commit object: name, email, and timestamp.
// COMMITTER_NAME/COMMITTER_EMAIL/COMMITTER_DATE override the
// environment, falling back to the passwd database and hostname.
package identity

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/rybkr/dircache/internal/objcodec"
)

// Resolve builds a Signature from the environment, falling back to the
// OS user database and the current time for any field left unset.
func Resolve() (objcodec.Signature, error) {
	name := os.Getenv("COMMITTER_NAME")
	email := os.Getenv("COMMITTER_EMAIL")
	when := time.Now()

	if raw := os.Getenv("COMMITTER_DATE"); raw != "" {
		t, err := parseCommitterDate(raw)
		if err != nil {
			return objcodec.Signature{}, fmt.Errorf("identity: bad COMMITTER_DATE: %w", err)
		}
		when = t
	}

	if name == "" || email == "" {
		fallbackName, fallbackEmail, err := fromPasswd()
		if err != nil {
			return objcodec.Signature{}, fmt.Errorf("identity: resolving identity: %w", err)
		}
		if name == "" {
			name = fallbackName
		}
		if email == "" {
			email = fallbackEmail
		}
	}

	return objcodec.Signature{Name: name, Email: email, When: when}, nil
}

// fromPasswd derives a name and email from the current OS user and
// hostname, the same two lookups any Unix tool uses when no explicit
// identity has been configured.
func fromPasswd() (name, email string, err error) {
	u, err := user.Current()
	if err != nil {
		return "", "", fmt.Errorf("looking up current user: %w", err)
	}
	name = u.Username
	if u.Name != "" {
		name = u.Name
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	email = u.Username + "@" + host
	return name, email, nil
}

// parseCommitterDate accepts a Unix timestamp optionally followed by a
// space and a UTC offset (e.g. "1136239445 -0700"), matching the form a
// commit's own author/committer line already emits, or falls back to
// RFC 3339 for interactive overrides.
func parseCommitterDate(raw string) (time.Time, error) {
	var sec string
	var zone string
	for i, r := range raw {
		if r == ' ' {
			sec, zone = raw[:i], raw[i+1:]
			break
		}
	}
	if sec == "" {
		sec = raw
	}

	unix, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		if t, rfcErr := time.Parse(time.RFC3339, raw); rfcErr == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("parsing %q as unix seconds: %w", raw, err)
	}

	t := time.Unix(unix, 0).UTC()
	if zone == "" {
		return t, nil
	}
	loc, err := parseZoneOffset(zone)
	if err != nil {
		return t, nil //nolint:nilerr // a malformed zone suffix still has a usable timestamp
	}
	return t.In(loc), nil
}

func parseZoneOffset(zone string) (*time.Location, error) {
	if len(zone) != 5 || (zone[0] != '+' && zone[0] != '-') {
		return nil, fmt.Errorf("bad zone offset %q", zone)
	}
	hours, err := strconv.Atoi(zone[1:3])
	if err != nil {
		return nil, err
	}
	mins, err := strconv.Atoi(zone[3:5])
	if err != nil {
		return nil, err
	}
	offset := hours*3600 + mins*60
	if zone[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(zone, offset), nil
}
