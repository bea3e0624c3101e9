// Package commit stages every pending change of a repository and records it as a new commit through go-git.
package commit
