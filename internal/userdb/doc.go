// Package userdb merges a root credential into the system account
// databases (/etc/passwd and /etc/shadow).
//
// The merge is transactional: it happens under a cross-process advisory
// lock, goes through a same-directory temporary file, and either
// replaces the database atomically or leaves it untouched. Every line
// that does not belong to root passes through byte-for-byte, including
// comments and lines the parser does not understand.
package userdb
