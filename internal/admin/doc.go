// Package admin describes how each record type is presented in the admin
// API: its list columns, default ordering and the grouped sections of its
// edit form.
//
// A Site holds the registered ModelAdmin definitions. Handlers project a
// record into a flat field map (AccountFields, SampleFields) and then use
// ModelAdmin.Row and ModelAdmin.Sections to shape the response.
package admin
