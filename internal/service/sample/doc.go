// Package sample implements persistence rules for SampleRecord: identifier
// and status defaults, slug derivation, save-time validation, file path
// choices and file/image attachment.
//
// Uniqueness of title, slug, email and hash, and non-negativity of
// positive_num, are left to the database. Those failures are returned
// unchanged from the repository.
package sample
