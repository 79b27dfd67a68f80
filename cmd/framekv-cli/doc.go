// Package main provides the entry point for framekv-cli.
//
// framekv-cli is the command-line client for FrameKV:
//
//	framekv-cli set greeting hello
//	framekv-cli get greeting
//	framekv-cli --server 10.0.0.5:6379 get greeting
package main
