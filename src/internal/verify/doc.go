// Package verify guards generated lists against suspicious changes before they
// are committed. It compares the line count of every *.txt file in a
// directory with the version at git HEAD and reports files whose size moved by
// more than a threshold percentage, as well as tracked files that disappeared.
package verify
