// Package domain contains the core model for vkconfig: Vulkan layers, their
// settings, and the configurations that override or exclude them.
//
// The domain is persistence-agnostic: it does not parse manifests, touch the
// filesystem or know where layers are installed. Lookups against the set of
// installed layers go through the LayerLookup interface, passed explicitly
// by callers. Infra adapters map into/from these types.
package domain
