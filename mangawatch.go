// Package mangawatch tracks serialized web content (manga) on behalf of users.
// It discovers chapter lists on arbitrary third-party sites, detects new
// chapters on a recurring schedule and notifies interested users.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, firecrawl/).
package mangawatch
