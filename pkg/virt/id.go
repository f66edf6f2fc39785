package virt

// BuildServiceID returns the stable identifier of a service.
// Both the provisioning path and the request path derive IDs with the
// same builders so stored responses stay addressable.
func BuildServiceID(name, version string) string {
	return name + ":" + version
}

// BuildOperationID returns the stable identifier of an operation within
// a service. Responses are stored and looked up under this key.
func BuildOperationID(service *Service, operation *Operation) string {
	return BuildServiceID(service.Name, service.Version) + "-" + operation.Name
}
