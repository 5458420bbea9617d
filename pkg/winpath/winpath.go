// Package winpath implements path canonicalization for the Win32 extended
// path namespace as pure string operations. The ordinary Win32 full-path
// routine strips trailing dots and spaces from each path component — exactly
// the characters this system exists to find and remove — so canonicalization
// here never invokes it, or anything backed by it such as filepath.Abs or
// filepath.Clean.
package winpath

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperFolder = cases.Upper(language.Und)

// extendedPrefix is the Win32 extended-length path prefix, which disables
// the ordinary path normalizer (and its 260-character legacy limit) for
// every API that accepts it.
const extendedPrefix = `\\?\`

// extendedUNCPrefix is the extended-length path prefix for UNC paths.
const extendedUNCPrefix = `\\?\UNC\`

// ToExtended converts p to its \\?\ extended form. If p is relative, it is
// joined against cwd at the string level, with no OS normalization, so
// trailing dots and spaces on any component survive. Paths already in
// extended form are returned unchanged.
func ToExtended(p, cwd string) string {
	if strings.HasPrefix(p, extendedPrefix) {
		return p
	}

	abs := SafeAbspath(p, cwd)

	if strings.HasPrefix(abs, `\\`) {
		return extendedUNCPrefix + strings.TrimLeft(abs, `\`)
	}
	return extendedPrefix + abs
}

// SafeAbspath returns the absolute form of p, preserving any trailing dot or
// space, without invoking the extended-path prefix. If p is already
// absolute it is returned with its separators normalized to backslashes; if
// relative, it is joined against cwd at the string level.
func SafeAbspath(p, cwd string) string {
	p = toBackslashes(p)

	if isAbsolute(p) {
		return p
	}

	cwd = toBackslashes(cwd)
	if strings.HasSuffix(cwd, `\`) {
		return cwd + p
	}
	return cwd + `\` + p
}

// isAbsolute reports whether p is an absolute Windows path: a drive letter
// followed by a colon and backslash, or a UNC path beginning with \\.
func isAbsolute(p string) bool {
	if strings.HasPrefix(p, `\\`) {
		return true
	}
	if len(p) >= 3 && p[1] == ':' && p[2] == '\\' {
		return true
	}
	return false
}

func toBackslashes(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

// foldCase is applied to both sides of every comparison in this package so
// root confinement matches Win32's case-insensitive filesystem semantics
// without touching the original casing of either path.
func foldCase(p string) string {
	return upperFolder.String(p)
}

// IsUnderRoot reports whether target lies within root, comparing
// case-folded, separator-normalized strings with root extended by a
// trailing separator. target == root counts as under, as does any path for
// which root (plus separator) is a strict prefix.
func IsUnderRoot(target, root string) bool {
	t := foldCase(toBackslashes(target))
	r := foldCase(toBackslashes(root))
	r = strings.TrimSuffix(r, `\`)

	if t == r {
		return true
	}
	return strings.HasPrefix(t, r+`\`)
}
