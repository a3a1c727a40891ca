package datadog

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

func getTags(tags any) []string {
	// Yaml parses lists as a sequence, so we'll unpack it again with the same library.
	if tags == nil {
		return []string{}
	}

	yamlBytes, err := yaml.Marshal(tags)
	if err != nil {
		return []string{}
	}

	var retTagStrings []string
	if err = yaml.Unmarshal(yamlBytes, &retTagStrings); err != nil || retTagStrings == nil {
		return []string{}
	}

	return retTagStrings
}

func toDatadogTags(tags map[string]string) []string {
	var retTags []string
	for key, val := range tags {
		retTags = append(retTags, fmt.Sprintf("%s:%s", key, val))
	}

	// Map iteration is random, keep the output stable.
	slices.Sort(retTags)
	return retTags
}
