// Package changes turns the working tree and index state of a git repository
// into a deterministic textual change report.
//
// A Scanner asks a StatusProvider for every changed path and a Classifier
// assigns each StatusEntry exactly one ChangeCategory by the priority
// Added, Modified, Deleted, Renamed. Each category renders one fragment:
// new files with their content, modified files with their index to worktree
// diff, deleted and renamed files with a marker line. Entries without a path
// render an "Unknown path" marker. Per-entry failures degrade to fallback text;
// only discovery and status failures surface as *ScanError values.
//
// Two repository backends are available. The native backend reads status,
// index blobs, and worktree files through go-git and go-billy and renders
// diffs with go-difflib. The gitcli backend shells out to git through
// internal/execshell and parses porcelain v2 status and patch output.
package changes
