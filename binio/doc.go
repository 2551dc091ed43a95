/*
Package binio provides position-tracking sequential readers and writers over
byte buffers and streams.

A Reader has a default byte order fixed at construction and explicit BE/LE
variants of every typed read. Buffer-backed readers support absolute
positioning; stream-backed readers support a single mark whose bytes are
replayed from an internal lookahead buffer on Reset.
*/
package binio
