// Package git reports whether a vault database would end up in a git
// repository.
//
// A seedvault database is not meant to be committed. The checks here look
// at the directory holding the file:
//   - whether it is inside a git work tree
//   - whether the file is tracked (it should not be)
//   - whether the file is ignored (it should be)
package git
