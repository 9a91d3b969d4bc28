package domain

// TransferConfiguration holds the options the presentation layer collects for a job.
// Services only read it.
type TransferConfiguration struct {
	OutputFile    string
	InputFile     string
	SaveHierarchy bool

	Search           string
	Replace          string
	UseSearchReplace bool

	Prefix       string
	TopNodesOnly bool

	LoadExplicitPaths bool
	LoadUnkeyed       bool
	UseChannelScope   bool
}
