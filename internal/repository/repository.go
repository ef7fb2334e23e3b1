// Package repository holds the MongoDB queries behind the service layer.
// Every error it returns has been through dberr.Wrap.
package repository
