// Package utils holds small file and path helpers shared by the commands,
// the config loader and the output writer.
package utils
