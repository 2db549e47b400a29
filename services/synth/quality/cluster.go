// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package quality

import "sort"

// ClusterConfig configures near-duplicate cluster reporting.
type ClusterConfig struct {
	// ShingleWidth is the character n-gram width. Default: 5.
	ShingleWidth int

	// Threshold is the minimum Jaccard similarity for two items to
	// share a cluster. Default: 0.90.
	Threshold float64
}

// DefaultClusterConfig returns the standard clustering settings.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		ShingleWidth: DefaultShingleWidth,
		Threshold:    0.90,
	}
}

// IndexedText is one item entering the cluster reporter, tagged with
// its 1-based position in the source file.
type IndexedText struct {
	Idx  int
	Text string
}

// ClusterReporter groups a batch of texts into approximate-duplicate
// clusters for review.
//
// # Description
//
// Items are first bucketed by a coarse fingerprint signature; only
// same-bucket pairs are compared, avoiding full pairwise cost. Within
// a bucket, clustering is greedy single-link against the cluster seed
// in arrival order. The resulting groups depend on that order and are
// not equivalence classes: similarity is not transitive.
//
// The reporter is diagnostic. It never removes items; the strict
// DuplicateFilter does that independently.
//
// # Thread Safety
//
// ClusterReporter is immutable after creation and safe for concurrent
// use.
type ClusterReporter struct {
	config ClusterConfig
}

// NewClusterReporter creates a reporter, applying defaults for
// zero-valued config fields.
func NewClusterReporter(config ClusterConfig) *ClusterReporter {
	defaults := DefaultClusterConfig()
	if config.ShingleWidth <= 0 {
		config.ShingleWidth = defaults.ShingleWidth
	}
	if config.Threshold <= 0 {
		config.Threshold = defaults.Threshold
	}
	return &ClusterReporter{config: config}
}

// bucketEntry pairs an item with its precomputed fingerprint.
type bucketEntry struct {
	idx int
	fp  Fingerprint
}

// Cluster partitions the batch into near-duplicate groups.
//
// Inputs:
//   - items: Texts in arrival order with stable indices.
//
// Outputs:
//   - [][]int: Clusters of size >= 2, each sorted ascending; clusters
//     ordered by first appearance of their bucket in the input.
func (r *ClusterReporter) Cluster(items []IndexedText) [][]int {
	buckets := make(map[uint64][]bucketEntry)
	var bucketOrder []uint64

	for _, item := range items {
		if item.Text == "" {
			continue
		}
		fp := Shingle(item.Text, r.config.ShingleWidth)
		sig := fp.BucketSignature()
		if _, seen := buckets[sig]; !seen {
			bucketOrder = append(bucketOrder, sig)
		}
		buckets[sig] = append(buckets[sig], bucketEntry{idx: item.Idx, fp: fp})
	}

	var clusters [][]int
	for _, sig := range bucketOrder {
		bucket := buckets[sig]
		if len(bucket) < 2 {
			continue
		}
		visited := make(map[int]bool)
		for i := 0; i < len(bucket); i++ {
			if visited[bucket[i].idx] {
				continue
			}
			cluster := []int{bucket[i].idx}
			visited[bucket[i].idx] = true
			for j := i + 1; j < len(bucket); j++ {
				if visited[bucket[j].idx] {
					continue
				}
				if bucket[i].fp.Jaccard(bucket[j].fp) >= r.config.Threshold {
					cluster = append(cluster, bucket[j].idx)
					visited[bucket[j].idx] = true
				}
			}
			if len(cluster) > 1 {
				sort.Ints(cluster)
				clusters = append(clusters, cluster)
			}
		}
	}
	return clusters
}
