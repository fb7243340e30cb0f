// Package shell implements the interactive `aprilaire shell` prompt.
//
// Lines are parsed by ParseCommand into packets to queue, a response to wait
// for, or a local action. Unsolicited updates from the client are printed
// above the prompt through readline's stdout.
package shell
