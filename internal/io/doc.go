// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Folder name sanitization for Windows-compatible course trees
//   - Attachment file name sanitization
//   - File copying, writing and cross-device moves
//   - Directory creation
//   - Course cover image scaling
//
// # Folder Names
//
// SanitizeFolderName strips characters Windows rejects and trims the result
// to at most 128 characters:
//
//	name := ioutils.SanitizeFolderName(`Module 3: "Advanced" topics...`)
//	// name == "Module 3 Advanced topics"
//
// # File Operations
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/path/to/contents.json", data)
//
//	// Move a staged file into its final place
//	err := ioutils.MoveFile(ctx, "/tmp/stage/a.pdf", "/courses/a.pdf")
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	cover, _ := svc.Cover(ctx, imageData, 600)
package ioutils
