package kinds

// Well-known plugin_base Kinds shared across plugin packages. Each
// component_namespace this runtime ships (triggers, mq, jobs) has exactly
// one plugin_base, defined once here and imported by every plugin package
// that registers a concrete plugin underneath it — so two independent
// packages (e.g. ingress/webhook and ingress/cron, both under "triggers")
// register the identical *Kind pointer instead of two separately
// constructed values that would collide under Registry.Register's
// same-ID-different-definition rejection.
var (
	TriggersBase = &Kind{Namespace: "triggers", Role: RolePluginBase}
	MQBase       = &Kind{Namespace: "mq", Role: RolePluginBase}
	JobsBase     = &Kind{Namespace: "jobs", Role: RolePluginBase}
)
