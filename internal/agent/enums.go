package agent

type ReasoningLevel string

const (
	ReasoningNone        ReasoningLevel = "none"
	ReasoningOptional    ReasoningLevel = "optional"
	ReasoningRecommended ReasoningLevel = "recommended"
	ReasoningMandatory   ReasoningLevel = "mandatory"
)

type ReasoningStrategy string

const (
	StrategyReAct          ReasoningStrategy = "react"
	StrategyChainOfThought ReasoningStrategy = "chain-of-thought"
	StrategyTreeOfThought  ReasoningStrategy = "tree-of-thought"
	StrategyReflection     ReasoningStrategy = "reflection"
)

type MemoryPolicy string

const (
	MemoryNone      MemoryPolicy = "none"
	MemoryShortTerm MemoryPolicy = "short-term"
	MemoryLongTerm  MemoryPolicy = "long-term"
)

type StateStorage string

const (
	StorageInMemory StateStorage = "in-memory"
	StorageLocal    StateStorage = "local"
	StorageRemote   StateStorage = "remote"
)

type ProviderType string

const (
	ProviderOfficial  ProviderType = "Official"
	ProviderCommunity ProviderType = "Community"
	ProviderCustom    ProviderType = "Custom"
)

// ReasoningLevels is the full ordered list offered by filters, whether or not
// any loaded template uses a given level.
func ReasoningLevels() []ReasoningLevel {
	return []ReasoningLevel{ReasoningNone, ReasoningOptional, ReasoningRecommended, ReasoningMandatory}
}

func ReasoningStrategies() []ReasoningStrategy {
	return []ReasoningStrategy{StrategyReAct, StrategyChainOfThought, StrategyTreeOfThought, StrategyReflection}
}

func MemoryPolicies() []MemoryPolicy {
	return []MemoryPolicy{MemoryNone, MemoryShortTerm, MemoryLongTerm}
}

func StateStorages() []StateStorage {
	return []StateStorage{StorageInMemory, StorageLocal, StorageRemote}
}

// ToolProviderTypes are valid for Tool providers; MCP servers exclude Custom.
func ToolProviderTypes() []ProviderType {
	return []ProviderType{ProviderOfficial, ProviderCommunity, ProviderCustom}
}

func MCPProviderTypes() []ProviderType {
	return []ProviderType{ProviderOfficial, ProviderCommunity}
}

func (l ReasoningLevel) Valid() bool {
	for _, v := range ReasoningLevels() {
		if l == v {
			return true
		}
	}
	return false
}

func (s ReasoningStrategy) Valid() bool {
	for _, v := range ReasoningStrategies() {
		if s == v {
			return true
		}
	}
	return false
}

func (m MemoryPolicy) Valid() bool {
	for _, v := range MemoryPolicies() {
		if m == v {
			return true
		}
	}
	return false
}

func (s StateStorage) Valid() bool {
	for _, v := range StateStorages() {
		if s == v {
			return true
		}
	}
	return false
}

func (p ProviderType) ValidForTool() bool {
	for _, v := range ToolProviderTypes() {
		if p == v {
			return true
		}
	}
	return false
}

func (p ProviderType) ValidForMCP() bool {
	for _, v := range MCPProviderTypes() {
		if p == v {
			return true
		}
	}
	return false
}
