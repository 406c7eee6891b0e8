// Package registry provides the static CIDR-to-institution lookup table used
// to flag likely non-residential traffic.
package registry

import (
	"fmt"
	"net/netip"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"insights-be/internal/domain"
	apperrors "insights-be/pkg/errors"
	"insights-be/pkg/logger"
)

// Registry is the immutable, process-wide institution table. The backing file
// is parsed once, lazily, on first lookup and never refreshed; a process
// restart is the refresh mechanism. A failed load degrades to "no IP is
// institutional" instead of failing requests, since institution flagging is
// an enrichment.
type Registry struct {
	path string
	log  *logger.Logger

	once    sync.Once
	entries []entry
}

type entry struct {
	prefix netip.Prefix
	record domain.InstitutionRecord
}

// New creates a registry backed by the given YAML file. The file holds a list
// of {cidr, name, region, country} records.
func New(path string, log *logger.Logger) *Registry {
	return &Registry{path: path, log: log}
}

// Match returns the first institution whose prefix contains the given IP.
// Malformed IPs and a failed registry load both yield no match, never an
// error; classification stays total over imperfect address data.
func (r *Registry) Match(ip string) (*domain.InstitutionRecord, bool) {
	r.once.Do(r.load)

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, false
	}
	addr = addr.Unmap()

	for i := range r.entries {
		if containsAddr(r.entries[i].prefix, addr) {
			return &r.entries[i].record, true
		}
	}
	return nil, false
}

func (r *Registry) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		appErr := apperrors.NewClassificationUnavailableError("failed to read institution registry", err)
		r.log.WithError(appErr).WithField("path", r.path).Warn("Institution registry unavailable, treating all IPs as non-institutional")
		return
	}

	var records []domain.InstitutionRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		appErr := apperrors.NewClassificationUnavailableError("failed to parse institution registry", err)
		r.log.WithError(appErr).WithField("path", r.path).Warn("Institution registry unavailable, treating all IPs as non-institutional")
		return
	}

	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		prefix, err := netip.ParsePrefix(rec.CIDRPrefix)
		if err != nil {
			r.log.WithFields(map[string]interface{}{
				"cidr": rec.CIDRPrefix,
				"name": rec.Name,
			}).Warn("Skipping institution entry with malformed CIDR prefix")
			continue
		}
		entries = append(entries, entry{prefix: prefix.Masked(), record: rec})
	}

	r.entries = entries
	r.log.WithFields(map[string]interface{}{
		"path":    r.path,
		"entries": len(entries),
	}).Info("Institution registry loaded")
}

// Contains reports whether the IP literal falls inside the CIDR prefix.
// Cross-family comparisons and malformed input are treated as "no match".
func Contains(ip, cidr string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return false
	}
	return containsAddr(prefix.Masked(), addr.Unmap())
}

func containsAddr(prefix netip.Prefix, addr netip.Addr) bool {
	if prefix.Addr().Is4() != addr.Is4() {
		return false
	}
	return prefix.Contains(addr)
}

// String describes the registry source, for logging
func (r *Registry) String() string {
	return fmt.Sprintf("institution registry (%s)", r.path)
}
