// Package markup renders the inline markup used in NDIE community posts into a
// tree of display nodes.
//
// The markup is a small set of line and span tokens (#-headings, **bold**,
// __underline__, *italic*, ~~strike~~, --- dividers and the <이미지> image tag).
// Rendering always succeeds: text without recognizable markup degrades to plain
// lines.
package markup
