package rayvision

import "strings"

// Endpoint paths of the render farm API. The last path segment of each one
// names its payload schema.
const (
	PathQueryPlatforms         = "/api/render/common/queryPlatforms"
	PathQueryUserProfile       = "/api/render/user/queryUserProfile"
	PathQueryUserSetting       = "/api/render/user/queryUserSetting"
	PathUpdateUserSetting      = "/api/render/user/updateUserSetting"
	PathGetTransferBid         = "/api/render/task/getTransferBid"
	PathCreateTask             = "/api/render/task/createTask"
	PathSubmitTask             = "/api/render/task/submitTask"
	PathQueryErrorDetail       = "/api/render/common/queryErrorDetail"
	PathGetTaskList            = "/api/render/task/getTaskList"
	PathStopTask               = "/api/render/task/stopTask"
	PathStartTask              = "/api/render/task/startTask"
	PathAbortTask              = "/api/render/task/abortTask"
	PathDeleteTask             = "/api/render/task/deleteTask"
	PathQueryTaskFrames        = "/api/render/task/queryTaskFrames"
	PathQueryAllFrameStats     = "/api/render/task/queryAllFrameStats"
	PathRestartFailedFrames    = "/api/render/task/restartFailedFrames"
	PathRestartFrame           = "/api/render/task/restartFrame"
	PathQueryTaskInfo          = "/api/render/task/queryTaskInfo"
	PathAddLabel               = "/api/render/common/addLabel"
	PathDeleteLabel            = "/api/render/common/deleteLabel"
	PathGetLabelList           = "/api/render/common/getLabelList"
	PathQuerySupportedSoftware = "/api/render/common/querySupportedSoftware"
	PathQuerySupportedPlugin   = "/api/render/common/querySupportedPlugin"
	PathAddRenderEnv           = "/api/render/common/addRenderEnv"
	PathUpdateRenderEnv        = "/api/render/common/updateRenderEnv"
	PathDeleteRenderEnv        = "/api/render/common/deleteRenderEnv"
	PathSetDefaultRenderEnv    = "/api/render/common/setDefaultRenderEnv"
	PathGetRenderEnv           = "/api/render/common/getRenderEnv"
	PathUpdateTaskUserLevel    = "/api/rendering/task/renderingTask/updateTaskUserLevel"
	PathGetRaySyncUserKey      = "/api/render/user/getRaySyncUserKey"
	PathGetTransferServerMsg   = "/api/render/task/getTransferServerMsg"
	PathLoadTaskProcessImg     = "/api/render/task/loadTaskProcessImg"
	PathSetOverTimeStop        = "/api/render/task/setOverTimeStop"
	PathLoadingFrameThumbnail  = "/api/render/task/loadingFrameThumbnail"
	PathFullSpeed              = "/api/render/task/fullSpeed"
)

// Endpoints lists every known endpoint path.
func Endpoints() []string {
	return []string{
		PathQueryPlatforms, PathQueryUserProfile, PathQueryUserSetting,
		PathUpdateUserSetting, PathGetTransferBid, PathCreateTask, PathSubmitTask,
		PathQueryErrorDetail, PathGetTaskList, PathStopTask, PathStartTask,
		PathAbortTask, PathDeleteTask, PathQueryTaskFrames, PathQueryAllFrameStats,
		PathRestartFailedFrames, PathRestartFrame, PathQueryTaskInfo, PathAddLabel,
		PathDeleteLabel, PathGetLabelList, PathQuerySupportedSoftware,
		PathQuerySupportedPlugin, PathAddRenderEnv, PathUpdateRenderEnv,
		PathDeleteRenderEnv, PathSetDefaultRenderEnv, PathGetRenderEnv,
		PathUpdateTaskUserLevel, PathGetRaySyncUserKey, PathGetTransferServerMsg,
		PathLoadTaskProcessImg, PathSetOverTimeStop, PathLoadingFrameThumbnail,
		PathFullSpeed,
	}
}

// EndpointName returns the schema name for an endpoint path: its last
// non-empty segment.
func EndpointName(endpointPath string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(endpointPath), "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func assembleURL(protocol, domain, endpointPath string) string {
	return protocol + "://" + domain + endpointPath
}
